package correlate

import (
	"errors"
	"fmt"

	"qsomerge/internal/qso"
	"qsomerge/internal/stage"
)

var (
	// ErrDuplicateSequence marks two primary records sharing a sequence index.
	ErrDuplicateSequence = errors.New("duplicate sequence index")
	// ErrUnsortedSequence marks primary records that are not in ascending sequence order.
	ErrUnsortedSequence = errors.New("sequence indices out of order")
)

// Index maps normalized call signs to their primary records in sequence order.
// It is read-only after BuildIndex returns and safe for concurrent lookups.
type Index struct {
	byCall  map[string][]qso.PrimaryRecord
	records int
}

// BuildIndex validates sequence ordering and groups records by identifier.
func BuildIndex(records []qso.PrimaryRecord) (*Index, error) {
	if err := CheckSequence(records); err != nil {
		return nil, err
	}
	index := &Index{
		byCall:  make(map[string][]qso.PrimaryRecord),
		records: len(records),
	}
	for _, record := range records {
		key := qso.NormalizeCallsign(record.Identifier)
		index.byCall[key] = append(index.byCall[key], record)
	}
	return index, nil
}

// CheckSequence verifies that sequence indices are unique and strictly increasing.
func CheckSequence(records []qso.PrimaryRecord) error {
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1].SequenceIndex, records[i].SequenceIndex
		switch {
		case cur == prev:
			return stage.Wrap(stage.ErrInvariant, "index", "check sequence",
				fmt.Sprintf("records %d and %d share sequence index %d", i-1, i, cur), ErrDuplicateSequence)
		case cur < prev:
			return stage.Wrap(stage.ErrInvariant, "index", "check sequence",
				fmt.Sprintf("sequence index %d follows %d at record %d", cur, prev, i), ErrUnsortedSequence)
		}
	}
	return nil
}

// Lookup returns every record for identifier in sequence order. Unknown
// identifiers yield an empty result. The returned slice is a copy.
func (ix *Index) Lookup(identifier string) []qso.PrimaryRecord {
	if ix == nil {
		return nil
	}
	matches := ix.byCall[qso.NormalizeCallsign(identifier)]
	if len(matches) == 0 {
		return nil
	}
	out := make([]qso.PrimaryRecord, len(matches))
	copy(out, matches)
	return out
}

// Len reports the number of indexed records.
func (ix *Index) Len() int {
	if ix == nil {
		return 0
	}
	return ix.records
}

// Identifiers reports the number of distinct call signs.
func (ix *Index) Identifiers() int {
	if ix == nil {
		return 0
	}
	return len(ix.byCall)
}
