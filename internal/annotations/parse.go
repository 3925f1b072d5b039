package annotations

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"qsomerge/internal/qso"
	"qsomerge/internal/textutil"
)

// fixedFields covers STATION SEQ# DATE TIME.
const fixedFields = 4

// Issue describes a line that was skipped or only partially understood.
type Issue struct {
	Source string `json:"source"`
	Line   int    `json:"line"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
	// Dropped is set when the line produced no record.
	Dropped bool `json:"dropped"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s:%d: %s", i.Source, i.Line, i.Reason)
}

// Parse reads every annotation line from r. source labels the records and
// issues (usually the file path).
func Parse(r io.Reader, source string) ([]qso.AnnotationRecord, []Issue, error) {
	var (
		records []qso.AnnotationRecord
		issues  []Issue
	)
	reader := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read annotations %s: %w", source, err)
		}
		line = strings.TrimRight(line, "\r\n")
		record, lineIssues, ok := ParseLine(line, source, lineNo)
		issues = append(issues, lineIssues...)
		if ok {
			records = append(records, record)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, nil, fmt.Errorf("read annotations %s: %w", source, err)
		}
	}
	return records, issues, nil
}

// ParseLine parses a single annotation line. ok is false for blank lines,
// comments and lines that cannot be attributed to any contact.
func ParseLine(line, source string, lineNo int) (qso.AnnotationRecord, []Issue, bool) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return qso.AnnotationRecord{}, nil, false
	}
	issue := func(reason string, dropped bool) Issue {
		return Issue{Source: source, Line: lineNo, Text: line, Reason: reason, Dropped: dropped}
	}

	head, rest := splitFields(trimmed, fixedFields)
	if len(head) < fixedFields {
		return qso.AnnotationRecord{}, []Issue{issue("missing station, serial, date or time", true)}, false
	}
	sep := strings.IndexByte(rest, ':')
	if sep < 0 {
		return qso.AnnotationRecord{}, []Issue{issue("missing ':' before note text", true)}, false
	}

	record := qso.AnnotationRecord{
		StationTag: head[0],
		Serial:     head[1],
		NoteText:   textutil.CleanNote(rest[sep+1:]),
		RawLine:    line,
		Source:     source,
		Line:       lineNo,
	}
	var issues []Issue

	ts, err := qso.ParseTimestamp(head[2], head[3])
	if err != nil {
		issues = append(issues, issue(fmt.Sprintf("invalid timestamp: %v", err), false))
		ts = time.Time{}
	}
	record.Timestamp = ts

	var calls []string
	for _, token := range strings.Fields(rest[:sep]) {
		if band, ok := qso.ParseBand(token); ok && record.Band == qso.BandUnknown {
			record.Band = band
			continue
		}
		if mode, ok := qso.ParseMode(token); ok && record.Mode == qso.ModeUnknown {
			record.Mode = mode
			continue
		}
		calls = append(calls, token)
	}
	switch len(calls) {
	case 0:
		issues = append(issues, issue("missing call sign", false))
	case 1:
		record.Identifier = qso.NormalizeCallsign(calls[0])
	default:
		record.Identifier = qso.NormalizeCallsign(calls[len(calls)-1])
		issues = append(issues, issue(fmt.Sprintf("ignored tokens %q", calls[:len(calls)-1]), false))
	}
	return record, issues, true
}

// splitFields returns up to n leading whitespace-separated fields and the
// untouched remainder of s.
func splitFields(s string, n int) ([]string, string) {
	fields := make([]string, 0, n)
	rest := s
	for len(fields) < n {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			break
		}
		end := strings.IndexAny(rest, " \t")
		if end < 0 {
			fields = append(fields, rest)
			rest = ""
			break
		}
		fields = append(fields, rest[:end])
		rest = rest[end:]
	}
	return fields, rest
}
