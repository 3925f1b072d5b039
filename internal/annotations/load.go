package annotations

import (
	"fmt"
	"os"

	"qsomerge/internal/qso"
)

// Set is the combined content of several annotation files in source order.
type Set struct {
	Files   []string
	Records []qso.AnnotationRecord
	Issues  []Issue
}

// Dropped counts issues that produced no record.
func (s Set) Dropped() int {
	n := 0
	for _, issue := range s.Issues {
		if issue.Dropped {
			n++
		}
	}
	return n
}

// Load parses files in the given order; record order is file order, then
// line order.
func Load(paths []string) (Set, error) {
	set := Set{Files: append([]string(nil), paths...)}
	for _, path := range paths {
		records, issues, err := LoadFile(path)
		if err != nil {
			return Set{}, err
		}
		set.Records = append(set.Records, records...)
		set.Issues = append(set.Issues, issues...)
	}
	return set, nil
}

// LoadFile parses a single annotation file.
func LoadFile(path string) ([]qso.AnnotationRecord, []Issue, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open annotations: %w", err)
	}
	defer file.Close()
	return Parse(file, path)
}
