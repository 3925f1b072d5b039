package annotations

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"qsomerge/internal/qso"
)

func TestParseLineFullForm(t *testing.T) {
	line := "OP1 12 2026-01-11 07:07 80m SSB ly2ts/p : sai 76 v6i 77"
	record, issues, ok := ParseLine(line, "op1.txt", 3)
	if !ok {
		t.Fatal("expected record")
	}
	if len(issues) != 0 {
		t.Fatalf("unexpected issues: %v", issues)
	}
	want := qso.AnnotationRecord{
		StationTag: "OP1",
		Serial:     "12",
		Identifier: "LY2TS",
		Timestamp:  time.Date(2026, 1, 11, 7, 7, 0, 0, time.UTC),
		Band:       qso.Band80m,
		Mode:       qso.ModeVoice,
		NoteText:   "sai 76 v6i 77",
		RawLine:    line,
		Source:     "op1.txt",
		Line:       3,
	}
	if !reflect.DeepEqual(record, want) {
		t.Fatalf("record mismatch:\n got %+v\nwant %+v", record, want)
	}
	if record.Location() != "op1.txt:3" {
		t.Fatalf("unexpected location %q", record.Location())
	}
}

func TestParseLineOptionalClassifiers(t *testing.T) {
	record, issues, ok := ParseLine("OP2 4 20260111 0707 SA0IAT: check exchange", "op2.txt", 1)
	if !ok || len(issues) != 0 {
		t.Fatalf("unexpected result ok=%v issues=%v", ok, issues)
	}
	if record.Band != qso.BandUnknown || record.Mode != qso.ModeUnknown {
		t.Fatalf("expected no band/mode, got %q/%q", record.Band, record.Mode)
	}
	if record.Identifier != "SA0IAT" || record.NoteText != "check exchange" {
		t.Fatalf("unexpected record %+v", record)
	}

	record, _, ok = ParseLine("OP2 5 2026-01-11 0710 CW SA0IAT : qrm", "op2.txt", 2)
	if !ok || record.Mode != qso.ModeCW || record.Band != qso.BandUnknown {
		t.Fatalf("expected mode-only classifier, got %+v", record)
	}
}

func TestParseLineKeepsNoteColons(t *testing.T) {
	record, _, ok := ParseLine("OP1 1 2026-01-11 07:07 LY2TS : rcvd: 59 076", "a", 1)
	if !ok {
		t.Fatal("expected record")
	}
	if record.NoteText != "rcvd: 59 076" {
		t.Fatalf("unexpected note %q", record.NoteText)
	}
}

func TestParseLineSkipsBlankAndComments(t *testing.T) {
	for _, line := range []string{"", "   ", "# operator notes", "  #x"} {
		if _, issues, ok := ParseLine(line, "a", 1); ok || len(issues) != 0 {
			t.Fatalf("expected %q to be skipped silently", line)
		}
	}
}

func TestParseLineDropsUnattributableLines(t *testing.T) {
	tests := []struct {
		line   string
		reason string
	}{
		{"OP1 12 2026-01-11", "missing station"},
		{"OP1 12 2026-01-11 07:07 LY2TS no separator", "missing ':'"},
	}
	for _, tt := range tests {
		_, issues, ok := ParseLine(tt.line, "a.txt", 9)
		if ok {
			t.Fatalf("expected %q to be dropped", tt.line)
		}
		if len(issues) != 1 || !issues[0].Dropped || !strings.Contains(issues[0].Reason, tt.reason) {
			t.Fatalf("unexpected issues for %q: %+v", tt.line, issues)
		}
		if issues[0].String() != "a.txt:9: "+issues[0].Reason {
			t.Fatalf("unexpected issue string %q", issues[0].String())
		}
	}
}

func TestParseLineKeepsRecordsWithBadKeys(t *testing.T) {
	record, issues, ok := ParseLine("OP1 12 2026-01-11 7h07 LY2TS : late entry", "a", 1)
	if !ok {
		t.Fatal("expected record despite invalid time")
	}
	if !record.Timestamp.IsZero() {
		t.Fatalf("expected zero timestamp, got %v", record.Timestamp)
	}
	if len(issues) != 1 || issues[0].Dropped {
		t.Fatalf("expected one non-dropping issue, got %+v", issues)
	}

	record, issues, ok = ParseLine("OP1 12 2026-01-11 0707 80m : who?", "a", 2)
	if !ok || record.Identifier != "" {
		t.Fatalf("expected record without identifier, got %+v ok=%v", record, ok)
	}
	if len(issues) != 1 || !strings.Contains(issues[0].Reason, "missing call sign") {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func TestParseReadsAllLines(t *testing.T) {
	input := "# OP1 notes\r\nOP1 1 2026-01-11 07:07 LY2TS : first\r\nbroken\r\nOP1 2 2026-01-11 07:09 SA0IAT : second"
	records, issues, err := Parse(strings.NewReader(input), "op1.txt")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Line != 2 || records[1].Line != 4 {
		t.Fatalf("unexpected line numbers %d, %d", records[0].Line, records[1].Line)
	}
	if strings.HasSuffix(records[0].RawLine, "\r") {
		t.Fatalf("raw line kept carriage return: %q", records[0].RawLine)
	}
	if len(issues) != 1 || issues[0].Line != 3 {
		t.Fatalf("unexpected issues %+v", issues)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestDiscoverAndCollect(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "b", "op2.txt"), "")
	writeFile(t, filepath.Join(root, "a", "op1.notes"), "")
	writeFile(t, filepath.Join(root, "a", "ignore.log"), "")
	writeFile(t, filepath.Join(root, ".git", "hidden.txt"), "")

	files, err := Discover(root, nil)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	want := []string{
		filepath.Join(root, "a", "op1.notes"),
		filepath.Join(root, "b", "op2.txt"),
	}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("Discover = %v, want %v", files, want)
	}

	extra := filepath.Join(root, "a", "ignore.log")
	collected, err := Collect([]string{extra, root, want[0]}, nil)
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	wantCollected := []string{extra, want[0], want[1]}
	if !reflect.DeepEqual(collected, wantCollected) {
		t.Fatalf("Collect = %v, want %v", collected, wantCollected)
	}

	if _, err := Discover(root, []string{"[bad"}); err == nil {
		t.Fatal("expected bad pattern error")
	}
	if _, err := Collect([]string{filepath.Join(root, "missing")}, nil); err == nil {
		t.Fatal("expected missing path error")
	}
}

func TestLoadKeepsSourceOrder(t *testing.T) {
	root := t.TempDir()
	first := filepath.Join(root, "op1.txt")
	second := filepath.Join(root, "op2.txt")
	writeFile(t, first, "OP1 1 2026-01-11 07:07 LY2TS : a\nOP1 2 2026-01-11 07:08 LY2TS : b\n")
	writeFile(t, second, "OP2 1 2026-01-11 07:01 SA0IAT : c\nnonsense\n")

	set, err := Load([]string{second, first})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var notes []string
	for _, r := range set.Records {
		notes = append(notes, r.NoteText)
	}
	if !reflect.DeepEqual(notes, []string{"c", "a", "b"}) {
		t.Fatalf("unexpected record order %v", notes)
	}
	if set.Dropped() != 1 {
		t.Fatalf("expected one dropped line, got %d", set.Dropped())
	}
	if _, err := Load([]string{filepath.Join(root, "missing.txt")}); err == nil {
		t.Fatal("expected error for missing file")
	}
}
