package cabrillo

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"qsomerge/internal/qso"
)

const qsoTag = "QSO:"

// DefaultWorkedCallField is the token index of the worked call sign in an
// NRAU-Baltic style QSO line (QSO: freq mo date time mycall rst seq region call ...).
const DefaultWorkedCallField = 9

// minQSOFields covers QSO: freq mo date time mycall.
const minQSOFields = 6

// Options controls how QSO lines are tokenized.
type Options struct {
	// WorkedCallField is the index of the worked call sign, counting QSO: as 0.
	WorkedCallField int
}

// DefaultOptions returns the NRAU-Baltic field layout.
func DefaultOptions() Options {
	return Options{WorkedCallField: DefaultWorkedCallField}
}

// Log is a parsed Cabrillo file.
type Log struct {
	Header  []string
	Records []qso.PrimaryRecord
	Footer  []string
	// Interludes holds non-QSO lines that sit between two QSO lines, keyed by
	// the sequence index of the record they follow.
	Interludes map[int][]string
	// CRLF is set when the source used \r\n line endings.
	CRLF bool
}

// ParseError reports a QSO line that could not be turned into a record.
type ParseError struct {
	Line   int
	Text   string
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("line %d: %s: %v", e.Line, e.Reason, e.Err)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

// ReadFile opens and parses a Cabrillo file.
func ReadFile(path string, opts Options) (*Log, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()
	return Read(file, opts)
}

// Read parses a Cabrillo stream. The first malformed QSO line aborts the read.
func Read(r io.Reader, opts Options) (*Log, error) {
	if opts.WorkedCallField < minQSOFields {
		opts.WorkedCallField = DefaultWorkedCallField
	}
	log := &Log{Interludes: map[int][]string{}}
	reader := bufio.NewReader(r)

	var pending []string
	lastSeq := 0
	for lineNo := 1; ; lineNo++ {
		line, err := reader.ReadString('\n')
		if line == "" && err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read log: %w", err)
		}
		line = strings.TrimSuffix(line, "\n")
		if strings.HasSuffix(line, "\r") {
			line = strings.TrimSuffix(line, "\r")
			if lineNo == 1 {
				log.CRLF = true
			}
		}

		if !isQSOLine(line) {
			if lastSeq == 0 {
				log.Header = append(log.Header, line)
			} else {
				pending = append(pending, line)
			}
		} else {
			record, perr := ParseLine(line, lineNo, opts)
			if perr != nil {
				return nil, perr
			}
			if lastSeq != 0 && len(pending) > 0 {
				log.Interludes[lastSeq] = pending
			}
			pending = nil
			log.Records = append(log.Records, record)
			lastSeq = record.SequenceIndex
		}

		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("read log: %w", err)
		}
	}
	log.Footer = pending
	return log, nil
}

// ParseLine converts one QSO: line into a PrimaryRecord whose sequence index
// is lineNo.
func ParseLine(line string, lineNo int, opts Options) (qso.PrimaryRecord, error) {
	callField := opts.WorkedCallField
	if callField < minQSOFields {
		callField = DefaultWorkedCallField
	}
	fields := strings.Fields(line)
	if len(fields) == 0 || !strings.EqualFold(fields[0], qsoTag) {
		return qso.PrimaryRecord{}, &ParseError{Line: lineNo, Text: line, Reason: "not a QSO line"}
	}
	if len(fields) <= callField {
		return qso.PrimaryRecord{}, &ParseError{
			Line:   lineNo,
			Text:   line,
			Reason: fmt.Sprintf("expected at least %d fields, found %d", callField+1, len(fields)),
		}
	}

	ts, err := qso.ParseTimestamp(fields[3], fields[4])
	if err != nil {
		return qso.PrimaryRecord{}, &ParseError{Line: lineNo, Text: line, Reason: "invalid timestamp", Err: err}
	}
	call := qso.NormalizeCallsign(fields[callField])
	if !qso.ValidCallsign(call) {
		return qso.PrimaryRecord{}, &ParseError{Line: lineNo, Text: line, Reason: fmt.Sprintf("invalid worked call %q", fields[callField])}
	}

	band, _ := qso.BandFromFrequency(fields[1])
	mode, _ := qso.ParseMode(fields[2])

	return qso.PrimaryRecord{
		SequenceIndex: lineNo,
		Identifier:    call,
		Timestamp:     ts,
		Band:          band,
		Mode:          mode,
		RawText:       line,
		Frequency:     fields[1],
		MyCall:        qso.NormalizeCallsign(fields[5]),
		Fields:        fields[1:],
	}, nil
}

func isQSOLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if len(trimmed) < len(qsoTag) {
		return false
	}
	return strings.EqualFold(trimmed[:len(qsoTag)], qsoTag)
}
