package qso

import (
	"fmt"
	"time"
)

// PrimaryRecord is one contact from the contest log.
type PrimaryRecord struct {
	SequenceIndex int       `json:"seq"`
	Identifier    string    `json:"call"`
	Timestamp     time.Time `json:"time"`
	Band          Band      `json:"band,omitempty"`
	Mode          Mode      `json:"mode,omitempty"`
	RawText       string    `json:"raw"`

	Frequency string   `json:"freq,omitempty"`
	MyCall    string   `json:"my_call,omitempty"`
	Fields    []string `json:"-"`
}

// AnnotationRecord is one operator note awaiting a contact.
type AnnotationRecord struct {
	StationTag string    `json:"station"`
	Serial     string    `json:"serial,omitempty"`
	Identifier string    `json:"call"`
	Timestamp  time.Time `json:"time"`
	Band       Band      `json:"band,omitempty"`
	Mode       Mode      `json:"mode,omitempty"`
	NoteText   string    `json:"note"`
	RawLine    string    `json:"raw"`

	Source string `json:"source,omitempty"`
	Line   int    `json:"line,omitempty"`
}

// Location renders the annotation's origin as file:line.
func (a AnnotationRecord) Location() string {
	if a.Source == "" {
		return fmt.Sprintf("line %d", a.Line)
	}
	return fmt.Sprintf("%s:%d", a.Source, a.Line)
}
