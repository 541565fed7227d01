package quiz

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
)

// Store reads and writes pool files in a directory.
type Store struct {
	dir string
}

// NewStore returns a store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Dir returns the store directory.
func (s *Store) Dir() string {
	return s.dir
}

// Load returns the stored pool. Unknown classes and missing files yield
// ErrNotAvailable.
func (s *Store) Load(classID string, kind Kind) (*Quiz, error) {
	if _, err := strconv.Atoi(classID); err != nil {
		return nil, fmt.Errorf("class %q: %w", classID, ErrNotAvailable)
	}

	data, err := os.ReadFile(filepath.Join(s.dir, kind.FileName(classID)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%s for class %s: %w", kind, classID, ErrNotAvailable)
		}
		return nil, fmt.Errorf("failed to read quiz pool: %w", err)
	}

	var q Quiz
	if err := json.Unmarshal(data, &q); err != nil {
		return nil, fmt.Errorf("failed to parse quiz pool %s: %w", kind.FileName(classID), err)
	}
	return &q, nil
}

// Save writes the pool as indented JSON and returns the file path.
func (s *Store) Save(classID string, kind Kind, q *Quiz) (string, error) {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create quiz directory: %w", err)
	}

	data, err := json.MarshalIndent(q, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode quiz pool: %w", err)
	}

	path := filepath.Join(s.dir, kind.FileName(classID))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write quiz pool: %w", err)
	}
	return path, nil
}
