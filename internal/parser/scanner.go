package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/roboco-io/shlokstudy/internal/ir"
)

const (
	topicPrefix    = "Title:"
	classPrefix    = "Class "
	minSeparator   = 5
	separatorChars = "-=_~*#"
)

var shlokHeaderPattern = regexp.MustCompile(`(?i)^Satsang Diksha Shlok\s*(\d+(?:-\d+)?)`)

// sectionState is either the verse body of the current block or a named
// reference section.
type sectionState struct {
	name      string
	verseBody bool
}

// pendingEntry is a reference still collecting continuation lines.
type pendingEntry struct {
	section string
	prose   bool
	entry   ir.ReferenceEntry
}

// scanner is the state of one Parse call. It is created per document and
// discarded when run returns.
type scanner struct {
	lines   []string
	options Options

	blocks  []*ir.VerseBlock
	current *ir.VerseBlock
	section sectionState
	pending *pendingEntry
	topic   string
	seen    map[string]int // display label -> times opened, whole document
}

func newScanner(lines []string, opts Options) *scanner {
	return &scanner{
		lines:   lines,
		options: opts,
		blocks:  make([]*ir.VerseBlock, 0),
		seen:    make(map[string]int),
	}
}

func (s *scanner) run() []*ir.VerseBlock {
	for i := 0; i < len(s.lines); i++ {
		line := strings.TrimRight(s.lines[i], " \t\r\v\f")
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := shlokHeaderPattern.FindStringSubmatch(trimmed); m != nil {
			s.startBlock(m[1])
			continue
		}

		if rest, ok := strings.CutPrefix(trimmed, topicPrefix); ok {
			s.topic = strings.TrimSpace(rest)
			continue
		}

		if !isSeparator(trimmed) && i+1 < len(s.lines) && isSeparator(strings.TrimSpace(s.lines[i+1])) {
			s.commit()
			s.section = sectionState{name: trimmed}
			i++
			continue
		}

		if isSeparator(trimmed) || strings.HasPrefix(trimmed, classPrefix) {
			continue
		}

		s.content(trimmed)
	}

	s.commit()
	return s.blocks
}

func (s *scanner) startBlock(label string) {
	s.commit()
	s.current = ir.NewVerseBlock(parseNumber(label), label)
	s.blocks = append(s.blocks, s.current)
	s.section = sectionState{verseBody: true}
	s.topic = ""
}

func (s *scanner) content(trimmed string) {
	if s.current == nil {
		return
	}

	text, bullet := stripBullet(trimmed)

	if s.section.verseBody {
		if !bullet || text == "" {
			return
		}
		s.current.AddVerseLine(FormatVerseLine(text))
		return
	}

	if s.section.name == "" {
		return
	}

	if bullet {
		s.open(text)
		return
	}

	if s.pending == nil {
		return
	}
	e := &s.pending.entry
	switch {
	case e.Body == "":
		e.Body = trimmed
	case s.pending.prose:
		e.Body += " " + trimmed
	default:
		e.Body += "\n" + trimmed
	}
}

func (s *scanner) open(label string) {
	s.commit()

	s.seen[label]++
	key := label
	if n := s.seen[label]; n > 1 {
		key = fmt.Sprintf("%s (%d)", label, n)
	}

	s.pending = &pendingEntry{
		section: s.section.name,
		prose:   s.options.isProse(s.section.name),
		entry: ir.ReferenceEntry{
			Key:          key,
			DisplayLabel: label,
			Topic:        s.topic,
		},
	}
}

// commit moves the pending entry into its section. It must run before any
// transition that changes the current block or section.
func (s *scanner) commit() {
	if s.pending == nil {
		return
	}
	if s.current != nil {
		s.current.Sections.Append(s.pending.section, s.pending.entry)
	}
	s.pending = nil
}

// parseNumber returns the leading integer of a header numeral ("12-13" -> 12).
func parseNumber(label string) int {
	digits, _, _ := strings.Cut(label, "-")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}

func stripBullet(trimmed string) (string, bool) {
	if rest, ok := strings.CutPrefix(trimmed, "•"); ok {
		return strings.TrimSpace(rest), true
	}
	if rest, ok := strings.CutPrefix(trimmed, "- "); ok {
		return strings.TrimSpace(rest), true
	}
	return trimmed, false
}

// isSeparator reports whether s is a run of at least minSeparator copies of
// one separator character.
func isSeparator(s string) bool {
	if len(s) < minSeparator {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	if !strings.ContainsRune(separatorChars, first) {
		return false
	}
	for _, r := range s {
		if r != first {
			return false
		}
	}
	return true
}
