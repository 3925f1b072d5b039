package workflow

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"qsomerge/internal/cabrillo"
	"qsomerge/internal/merge"
	"qsomerge/internal/testsupport"
)

func TestRenderKeepsInterludesAndFooter(t *testing.T) {
	log := &cabrillo.Log{
		Header:     []string{"START-OF-LOG: 3.0"},
		Interludes: map[int][]string{2: {"X-QSO: dupe"}},
		Footer:     []string{"END-OF-LOG:"},
	}
	out := merge.Output{
		Entries: []merge.Entry{
			{SequenceIndex: 2, Lines: []string{"QSO: a", "# NOTE: first"}},
			{SequenceIndex: 4, Lines: []string{"QSO: b"}},
		},
		Trailer: []string{"# UNRESOLVED: x [unmatched]"},
	}
	want := "START-OF-LOG: 3.0\nQSO: a\n# NOTE: first\nX-QSO: dupe\nQSO: b\nEND-OF-LOG:\n# UNRESOLVED: x [unmatched]\n"
	if got := string(Render(log, out)); got != want {
		t.Fatalf("Render mismatch:\n%q\nwant\n%q", got, want)
	}
}

func TestRenderEmpty(t *testing.T) {
	if got := Render(nil, merge.Output{}); got != nil {
		t.Fatalf("expected nil for empty output, got %q", got)
	}
	if got := Render(&cabrillo.Log{CRLF: true}, merge.Output{}); got != nil {
		t.Fatalf("expected nil for empty log, got %q", got)
	}
}

func TestRunKeepsCRLF(t *testing.T) {
	f := newFixture(t, testsupport.WithOutput("-", false))
	crlf := testsupport.WriteFile(t, filepath.Join(f.dir, "crlf.log"), strings.ReplaceAll(contestLog, "\n", "\r\n"))

	var stdout bytes.Buffer
	if _, err := f.run(t, Request{LogPath: crlf, Stdout: &stdout}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stdout.String() != strings.ReplaceAll(contestLog, "\n", "\r\n") {
		t.Fatalf("expected CRLF log unchanged, got %q", stdout.String())
	}
}
