package ir

import (
	"bytes"
	"encoding/json"
)

// Sections is an insertion-ordered mapping from section name to its entries.
type Sections struct {
	names   []string
	entries map[string][]ReferenceEntry
}

// NewSections creates an empty ordered section map.
func NewSections() *Sections {
	return &Sections{
		entries: make(map[string][]ReferenceEntry),
	}
}

// Append adds an entry to the named section, creating the section on first use.
// A name seen before keeps its original position.
func (s *Sections) Append(name string, e ReferenceEntry) {
	if s.entries == nil {
		s.entries = make(map[string][]ReferenceEntry)
	}
	if _, ok := s.entries[name]; !ok {
		s.names = append(s.names, name)
	}
	s.entries[name] = append(s.entries[name], e)
}

// Get returns the entries of a section.
func (s *Sections) Get(name string) ([]ReferenceEntry, bool) {
	if s == nil {
		return nil, false
	}
	e, ok := s.entries[name]
	return e, ok
}

// Names returns section names in first-seen order.
func (s *Sections) Names() []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s.names))
	copy(out, s.names)
	return out
}

// Len returns the number of sections.
func (s *Sections) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}

// Each calls fn for every section in order.
func (s *Sections) Each(fn func(name string, entries []ReferenceEntry)) {
	for _, name := range s.names {
		fn(name, s.entries[name])
	}
}

// MarshalJSON encodes the sections as a JSON object with keys in insertion order.
func (s *Sections) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range s.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(s.entries[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object, keeping the key order of the input.
func (s *Sections) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil { // {
		return err
	}
	*s = *NewSections()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, _ := tok.(string)
		var entries []ReferenceEntry
		if err := dec.Decode(&entries); err != nil {
			return err
		}
		if _, ok := s.entries[name]; !ok {
			s.names = append(s.names, name)
		}
		s.entries[name] = append(s.entries[name], entries...)
	}
	_, err := dec.Token() // }
	return err
}
