package logdiff

import (
	"fmt"
	"strings"

	"qsomerge/internal/cabrillo"
	"qsomerge/internal/qso"
)

// Kind classifies an amendment.
type Kind string

const (
	KindChanged Kind = "changed"
	KindRemoved Kind = "removed"
	KindAdded   Kind = "added"
)

// fieldNames labels QSO tokens after the QSO: tag.
var fieldNames = []string{
	"freq", "mode", "date", "time", "mycall",
	"rst_sent", "seq_sent", "my_region",
	"call", "rst_rcvd", "seq_rcvd", "their_region",
}

// FieldChange is one differing token.
type FieldChange struct {
	Field string `json:"field"`
	Old   string `json:"old"`
	New   string `json:"new"`
}

func (c FieldChange) String() string {
	return fmt.Sprintf("%s: '%s' -> '%s'", c.Field, c.Old, c.New)
}

// Amendment is one difference between the two revisions.
type Amendment struct {
	Number  int           `json:"number"`
	Kind    Kind          `json:"kind"`
	OldLine int           `json:"old_line,omitempty"`
	NewLine int           `json:"new_line,omitempty"`
	Old     string        `json:"old,omitempty"`
	New     string        `json:"new,omitempty"`
	Changes []FieldChange `json:"changes,omitempty"`
}

// Report lists every amendment in position order.
type Report struct {
	Amendments []Amendment `json:"amendments"`
	Total      int         `json:"total"`
}

// Compare pairs QSO records of before and after by position.
func Compare(before, after *cabrillo.Log) Report {
	oldRecords := records(before)
	newRecords := records(after)
	report := Report{Amendments: []Amendment{}}

	count := max(len(oldRecords), len(newRecords))
	for i := 0; i < count; i++ {
		var amendment Amendment
		switch {
		case i < len(oldRecords) && i < len(newRecords):
			o, n := oldRecords[i], newRecords[i]
			if normalizeLine(o.RawText) == normalizeLine(n.RawText) {
				continue
			}
			amendment = Amendment{
				Kind:    KindChanged,
				OldLine: o.SequenceIndex,
				NewLine: n.SequenceIndex,
				Old:     o.RawText,
				New:     n.RawText,
				Changes: FieldChanges(o, n),
			}
		case i < len(oldRecords):
			o := oldRecords[i]
			amendment = Amendment{Kind: KindRemoved, OldLine: o.SequenceIndex, Old: o.RawText}
		default:
			n := newRecords[i]
			amendment = Amendment{Kind: KindAdded, NewLine: n.SequenceIndex, New: n.RawText}
		}
		amendment.Number = len(report.Amendments) + 1
		report.Amendments = append(report.Amendments, amendment)
	}
	report.Total = len(report.Amendments)
	return report
}

// FieldChanges lists the tokens that differ between two records.
func FieldChanges(before, after qso.PrimaryRecord) []FieldChange {
	oldFields, newFields := tokens(before), tokens(after)
	var changes []FieldChange
	for i := 0; i < max(len(oldFields), len(newFields)); i++ {
		o, n := at(oldFields, i), at(newFields, i)
		if o == n {
			continue
		}
		changes = append(changes, FieldChange{Field: FieldName(i), Old: o, New: n})
	}
	return changes
}

// FieldName returns the label for the token at position i after QSO:.
func FieldName(i int) string {
	if i >= 0 && i < len(fieldNames) {
		return fieldNames[i]
	}
	return fmt.Sprintf("field_%d", i+1)
}

func records(log *cabrillo.Log) []qso.PrimaryRecord {
	if log == nil {
		return nil
	}
	return log.Records
}

func tokens(record qso.PrimaryRecord) []string {
	if len(record.Fields) > 0 {
		return record.Fields
	}
	fields := strings.Fields(record.RawText)
	if len(fields) > 0 {
		fields = fields[1:]
	}
	return fields
}

func at(fields []string, i int) string {
	if i < len(fields) {
		return fields[i]
	}
	return ""
}

func normalizeLine(line string) string {
	return strings.Join(strings.Fields(line), " ")
}
