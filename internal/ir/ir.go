// Package ir defines the in-memory document tree produced by the class-text parser.
// Downstream consumers (catalog, HTTP server) treat it as read-only.
package ir

// VerseBlock is one shlok unit: its verse text and every reference section
// collected beneath it.
type VerseBlock struct {
	Number             int       `json:"number"`                         // 0 if the header number was unparseable
	Label              string    `json:"label,omitempty"`                // numeral text as written, e.g. "12-13"
	PrimaryText        string    `json:"primary_text,omitempty"`         // most recently seen verse line
	OriginalScriptText string    `json:"original_script_text,omitempty"` // earlier verse lines, "\n"-joined
	Sections           *Sections `json:"sections"`
}

// ReferenceEntry is one bulleted citation inside a section.
type ReferenceEntry struct {
	Key          string `json:"key"`           // de-duplicated lookup key ("Ref", "Ref (2)", ...)
	DisplayLabel string `json:"display_label"` // bullet text as written
	Body         string `json:"body"`
	Topic        string `json:"topic,omitempty"`
}

// NewVerseBlock creates an empty block for the given verse number.
func NewVerseBlock(number int, label string) *VerseBlock {
	return &VerseBlock{
		Number:   number,
		Label:    label,
		Sections: NewSections(),
	}
}

// HasOriginalScript reports whether more than one verse line was seen.
func (b *VerseBlock) HasOriginalScript() bool {
	return b.OriginalScriptText != ""
}

// AddVerseLine records a verse line. The newest line always becomes the
// primary text; whatever was primary before moves into the original-script
// text, which accumulates in arrival order.
func (b *VerseBlock) AddVerseLine(line string) {
	if b.PrimaryText == "" {
		b.PrimaryText = line
		return
	}
	if b.OriginalScriptText == "" {
		b.OriginalScriptText = b.PrimaryText
	} else {
		b.OriginalScriptText += "\n" + b.PrimaryText
	}
	b.PrimaryText = line
}

// IsEmpty returns true if the block carries no verse text and no references.
func (b *VerseBlock) IsEmpty() bool {
	return b.PrimaryText == "" && b.OriginalScriptText == "" && b.Sections.Len() == 0
}

// TopicGroup is a run of consecutive entries sharing the same topic.
type TopicGroup struct {
	Topic   string           `json:"topic,omitempty"`
	Entries []ReferenceEntry `json:"entries"`
}

// GroupByTopic splits entries into consecutive runs with an identical topic.
// Order is preserved; a topic that reappears later starts a new group.
func GroupByTopic(entries []ReferenceEntry) []TopicGroup {
	var groups []TopicGroup
	for _, e := range entries {
		if n := len(groups); n > 0 && groups[n-1].Topic == e.Topic {
			groups[n-1].Entries = append(groups[n-1].Entries, e)
			continue
		}
		groups = append(groups, TopicGroup{Topic: e.Topic, Entries: []ReferenceEntry{e}})
	}
	return groups
}
