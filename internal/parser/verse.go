package parser

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	bar   = '|'
	danda = '।'
)

// verseEndPattern matches a numbered verse-end marker such as "॥ 8 ॥",
// "|| 12-13 ||" or "।। ૪ ।।".
var verseEndPattern = regexp.MustCompile(`(?:॥|\|\||।।)\s*\p{Nd}+(?:\s*-\s*\p{Nd}+)?\s*(?:॥|\|\||।।)`)

// NowrapOpen and NowrapClose bracket verse-end markers so a renderer never
// breaks them across lines.
const (
	NowrapOpen  = `<span class="nowrap">`
	NowrapClose = `</span>`
)

// FormatVerseLine splits metrical half-lines and protects verse-end markers.
//
// A lone "|" or "।" becomes a line break. Doubled marks ("||", "।।") and the
// double danda "॥" stay in place, and every numbered verse-end marker is
// wrapped in a nowrap span. "\|" and "\।" produce a literal mark.
func FormatVerseLine(line string) string {
	return verseEndPattern.ReplaceAllString(breakHalfLines(line), NowrapOpen+"$0"+NowrapClose)
}

func breakHalfLines(line string) string {
	rs := []rune(line)
	out := make([]rune, 0, len(rs))

	for i := 0; i < len(rs); i++ {
		r := rs[i]

		if r == '\\' && i+1 < len(rs) && isMark(rs[i+1]) {
			out = append(out, rs[i+1])
			i++
			continue
		}

		if !isMark(r) {
			out = append(out, r)
			continue
		}

		doubled := (i+1 < len(rs) && rs[i+1] == r) || (i > 0 && rs[i-1] == r && !escapedAt(rs, i-1))
		if doubled {
			out = append(out, r)
			continue
		}

		out = trimTrailingSpace(out)
		out = append(out, '\n')
		for i+1 < len(rs) && unicode.IsSpace(rs[i+1]) {
			i++
		}
	}

	return strings.TrimSpace(string(out))
}

func isMark(r rune) bool {
	return r == bar || r == danda
}

// escapedAt reports whether the mark at i was preceded by a backslash.
func escapedAt(rs []rune, i int) bool {
	return i > 0 && rs[i-1] == '\\'
}

func trimTrailingSpace(rs []rune) []rune {
	for len(rs) > 0 && unicode.IsSpace(rs[len(rs)-1]) {
		rs = rs[:len(rs)-1]
	}
	return rs
}
