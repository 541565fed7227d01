// Package catalog indexes the class documents of a content directory and
// resolves individual shlok pages with their navigation.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/roboco-io/shlokstudy/internal/ir"
	"github.com/roboco-io/shlokstudy/internal/parser"
)

var (
	// ErrClassNotFound is returned for an unknown or empty class.
	ErrClassNotFound = errors.New("class not found")
	// ErrShlokNotFound is returned when a class has no shlok with the number.
	ErrShlokNotFound = errors.New("shlok not found")
)

// DefaultIndexFile is the class index inside the content directory.
const DefaultIndexFile = "classes.json"

// maxParallel bounds concurrent document parsing during indexing.
const maxParallel = 8

var firstNumber = regexp.MustCompile(`\d+`)

// Class is one entry of the class index.
type Class struct {
	File  string `json:"file"`
	Title string `json:"title"`
}

// ClassMetadata is the navigational summary of one class.
type ClassMetadata struct {
	Filename string `json:"filename"`
	Label    string `json:"label"`
	Shloks   []int  `json:"shloks"`
}

// Page is a single shlok with its neighbours inside the class.
type Page struct {
	ClassID    string         `json:"class_id"`
	Block      *ir.VerseBlock `json:"block"`
	Prev       *int           `json:"prev,omitempty"`
	Next       *int           `json:"next,omitempty"`
	NextIsQuiz bool           `json:"next_is_quiz"` // the last shlok leads to the class quiz
}

// Catalog reads class documents from a file system.
type Catalog struct {
	fsys      fs.FS
	indexFile string
	parser    *parser.Parser
	logger    *zap.Logger
}

// Option customises a Catalog.
type Option func(*Catalog)

// WithIndexFile overrides the class index file name.
func WithIndexFile(name string) Option {
	return func(c *Catalog) {
		if name != "" {
			c.indexFile = name
		}
	}
}

// WithParserOptions sets the options used to parse every document.
func WithParserOptions(opts parser.Options) Option {
	return func(c *Catalog) { c.parser = parser.New(opts) }
}

// WithLogger sets the logger for unreadable documents.
func WithLogger(l *zap.Logger) Option {
	return func(c *Catalog) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a catalog over fsys.
func New(fsys fs.FS, opts ...Option) *Catalog {
	c := &Catalog{
		fsys:      fsys,
		indexFile: DefaultIndexFile,
		parser:    parser.New(parser.DefaultOptions()),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ClassFileName returns the document name for a class id.
func ClassFileName(classID string) string {
	return "Class_" + classID + ".txt"
}

// ClassNumber returns the first number in a file name, or 0.
func ClassNumber(filename string) int {
	n, err := strconv.Atoi(firstNumber.FindString(filename))
	if err != nil {
		return 0
	}
	return n
}

// Classes reads the class index. A missing index yields an empty list.
func (c *Catalog) Classes() ([]Class, error) {
	data, err := fs.ReadFile(c.fsys, c.indexFile)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []Class{}, nil
		}
		return nil, fmt.Errorf("failed to read class index: %w", err)
	}

	var classes []Class
	if err := json.Unmarshal(data, &classes); err != nil {
		return nil, fmt.Errorf("failed to parse class index: %w", err)
	}
	return classes, nil
}

// ClassIDs lists the ids of every Class_<n>.txt document in ascending order,
// whether or not the index mentions it.
func (c *Catalog) ClassIDs() ([]int, error) {
	matches, err := fs.Glob(c.fsys, "Class_*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to list class files: %w", err)
	}

	ids := make([]int, 0, len(matches))
	for _, m := range matches {
		digits := strings.TrimSuffix(strings.TrimPrefix(m, "Class_"), ".txt")
		n, err := strconv.Atoi(digits)
		if err != nil {
			continue
		}
		ids = append(ids, n)
	}
	sort.Ints(ids)
	return ids, nil
}

// Text returns the raw text of a class document.
func (c *Catalog) Text(filename string) (string, error) {
	if !validName(filename) {
		return "", fmt.Errorf("invalid class file name %q: %w", filename, fs.ErrNotExist)
	}
	data, err := fs.ReadFile(c.fsys, filename)
	if err != nil {
		return "", fmt.Errorf("failed to read class file: %w", err)
	}
	return string(data), nil
}

// Content reads and parses a class document.
func (c *Catalog) Content(filename string) ([]*ir.VerseBlock, error) {
	text, err := c.Text(filename)
	if err != nil {
		return nil, err
	}
	return c.parser.Parse(text), nil
}

// Metadata parses every indexed class and returns their summaries ordered
// by class number. Unreadable documents are logged and listed without shloks.
func (c *Catalog) Metadata(ctx context.Context) ([]ClassMetadata, error) {
	classes, err := c.Classes()
	if err != nil {
		return nil, err
	}

	out := make([]ClassMetadata, len(classes))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallel)

	for i, cls := range classes {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			meta := ClassMetadata{Filename: cls.File, Label: cls.Title, Shloks: []int{}}
			blocks, err := c.Content(cls.File)
			if err != nil {
				c.logger.Warn("skipping unreadable class", zap.String("file", cls.File), zap.Error(err))
			}
			for _, b := range blocks {
				meta.Shloks = append(meta.Shloks, b.Number)
			}
			out[i] = meta
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(out, func(i, j int) bool {
		return ClassNumber(out[i].Filename) < ClassNumber(out[j].Filename)
	})
	return out, nil
}

// Shlok resolves one shlok of a class together with its navigation.
func (c *Catalog) Shlok(classID string, number int) (*Page, error) {
	if _, err := strconv.Atoi(classID); err != nil {
		return nil, fmt.Errorf("class %q: %w", classID, ErrClassNotFound)
	}

	blocks, err := c.Content(ClassFileName(classID))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("class %s: %w", classID, ErrClassNotFound)
		}
		return nil, err
	}
	if len(blocks) == 0 {
		return nil, fmt.Errorf("class %s has no shloks: %w", classID, ErrClassNotFound)
	}

	idx := -1
	for i, b := range blocks {
		if b.Number == number {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("class %s shlok %d: %w", classID, number, ErrShlokNotFound)
	}

	page := &Page{ClassID: classID, Block: blocks[idx]}
	if idx > 0 {
		prev := blocks[idx-1].Number
		page.Prev = &prev
	}
	if idx < len(blocks)-1 {
		next := blocks[idx+1].Number
		page.Next = &next
	} else {
		page.NextIsQuiz = true
	}
	return page, nil
}

func validName(name string) bool {
	return fs.ValidPath(name) && path.Base(name) == name && name != "."
}
