package merge

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"qsomerge/internal/correlate"
	"qsomerge/internal/qso"
	"qsomerge/internal/stage"
)

const (
	// NotePrefix starts every attached annotation line.
	NotePrefix = "# NOTE: "
	// UnresolvedPrefix starts every trailer line.
	UnresolvedPrefix = "# UNRESOLVED: "
)

// ErrUnknownTarget marks a match that points outside the primary set.
var ErrUnknownTarget = errors.New("match target not in primary set")

// Entry is one primary line followed by the notes attached to it.
type Entry struct {
	SequenceIndex int
	Lines         []string
}

// Output is the assembled merge result.
type Output struct {
	// Merged holds every primary line with its notes, in sequence order.
	Merged []string
	// Trailer holds one line per annotation that was not matched.
	Trailer []string
	// Entries is Merged grouped per primary record.
	Entries []Entry
}

// Assemble attaches matched notes to their primary records. primary must be
// sorted by sequence index; results are taken in source order.
func Assemble(primary []qso.PrimaryRecord, results []correlate.MatchResult) (Output, error) {
	if err := correlate.CheckSequence(primary); err != nil {
		return Output{}, err
	}

	position := make(map[int]int, len(primary))
	for i, record := range primary {
		position[record.SequenceIndex] = i
	}

	notes := make([][]string, len(primary))
	var trailer []string
	for _, result := range results {
		switch outcome := result.Outcome.(type) {
		case correlate.Matched:
			pos, ok := position[outcome.Target.SequenceIndex]
			if !ok {
				return Output{}, stage.Wrap(stage.ErrInvariant, "assemble", "attach note",
					fmt.Sprintf("annotation %s targets sequence index %d", result.Annotation.Location(), outcome.Target.SequenceIndex),
					ErrUnknownTarget)
			}
			notes[pos] = append(notes[pos], NoteLine(result.Annotation.NoteText))
		default:
			trailer = append(trailer, TrailerLine(result))
		}
	}

	out := Output{
		Merged:  make([]string, 0, len(primary)+len(results)),
		Trailer: trailer,
		Entries: make([]Entry, 0, len(primary)),
	}
	for i, record := range primary {
		lines := make([]string, 0, 1+len(notes[i]))
		lines = append(lines, record.RawText)
		lines = append(lines, notes[i]...)
		out.Entries = append(out.Entries, Entry{SequenceIndex: record.SequenceIndex, Lines: lines})
		out.Merged = append(out.Merged, lines...)
	}
	return out, nil
}

// Lines composes a complete file: header, merged block, footer, trailer.
func (o Output) Lines(header, footer []string) []string {
	return o.Compose(header, nil, footer)
}

// Compose is Lines with interlude lines re-inserted after the entry whose
// sequence index they follow.
func (o Output) Compose(header []string, interludes map[int][]string, footer []string) []string {
	lines := make([]string, 0, len(header)+len(o.Merged)+len(footer)+len(o.Trailer))
	lines = append(lines, header...)
	for _, entry := range o.Entries {
		lines = append(lines, entry.Lines...)
		lines = append(lines, interludes[entry.SequenceIndex]...)
	}
	lines = append(lines, footer...)
	lines = append(lines, o.Trailer...)
	return lines
}

// NoteLine renders an attached annotation.
func NoteLine(text string) string {
	return NotePrefix + text
}

// TrailerLine renders an unresolved annotation with its outcome tag.
func TrailerLine(result correlate.MatchResult) string {
	var tag string
	switch outcome := result.Outcome.(type) {
	case correlate.Ambiguous:
		seqs := make([]string, 0, len(outcome.Targets))
		for _, target := range outcome.Targets {
			seqs = append(seqs, strconv.Itoa(target.SequenceIndex))
		}
		tag = "ambiguous: " + strings.Join(seqs, ",")
	case correlate.Unmatched:
		tag = "unmatched: " + string(outcome.Reason)
	default:
		tag = "unmatched"
	}
	return fmt.Sprintf("%s%s [%s]", UnresolvedPrefix, result.Annotation.RawLine, tag)
}
