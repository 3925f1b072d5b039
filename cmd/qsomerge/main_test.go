package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"qsomerge/internal/stage"
	"qsomerge/internal/testsupport"
)

const testLog = `START-OF-LOG: 3.0
CALLSIGN: ES1XX
QSO: 3500 PH 2026-01-11 0707 ES1XX 59 001 HA LY2TS 59 004 VL
QSO: 3500 PH 2026-01-11 0712 ES1XX 59 002 HA OH1AA 59 005 UU
END-OF-LOG:
`

const testNotes = `OP1 1 2026-01-11 07:07 LY2TS/P : wants a sked on 40
OP1 2 2026-01-11 07:40 SM5ZZZ : not in the log
`

type cliEnv struct {
	dir     string
	logPath string
	notes   string
}

func setupCLIEnv(t *testing.T) cliEnv {
	t.Helper()
	testsupport.IsolateEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)

	return cliEnv{
		dir:     dir,
		logPath: testsupport.WriteFile(t, filepath.Join(dir, "es1xx.log"), testLog),
		notes:   testsupport.WriteFile(t, filepath.Join(dir, "op1.txt"), testNotes),
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}

func TestMergeWritesLogAndReport(t *testing.T) {
	env := setupCLIEnv(t)

	out, stderr, err := runCLI(t, "merge", env.logPath, env.notes)
	if err != nil {
		t.Fatalf("merge: %v\n%s", err, stderr)
	}
	requireContains(t, out, "== Reconciliation ==")
	requireContains(t, out, "2 total, 1 matched (50.0%)")
	requireContains(t, out, "0 ambiguous, 1 unmatched")
	requireContains(t, out, "OP1")
	requireContains(t, out, "unknown_identifier")
	requireContains(t, stderr, "merge run completed")

	merged := testsupport.ReadFile(t, filepath.Join(env.dir, "es1xx.merged.log"))
	requireContains(t, merged, "LY2TS 59 004 VL\n# NOTE: wants a sked on 40\n")
	requireContains(t, merged, "# UNRESOLVED: OP1 2 2026-01-11 07:40 SM5ZZZ : not in the log [unmatched: unknown_identifier]\n")
}

func TestMergeToStdoutMovesReportToStderr(t *testing.T) {
	env := setupCLIEnv(t)

	out, stderr, err := runCLI(t, "merge", "--out", "-", "--log-level", "error", env.logPath, env.notes)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if !strings.HasPrefix(out, "START-OF-LOG: 3.0\n") || strings.Contains(out, "Reconciliation") {
		t.Fatalf("stdout should hold only the merged log, got:\n%s", out)
	}
	requireContains(t, stderr, "written to stdout")
}

func TestMergeJSONDryRun(t *testing.T) {
	env := setupCLIEnv(t)

	out, _, err := runCLI(t, "merge", "--dry-run", "--json", "--tolerance", "30", env.logPath, env.notes)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	var payload struct {
		Written bool `json:"written"`
		DryRun  bool `json:"dry_run"`
		Summary struct {
			Total   int `json:"total"`
			Matched int `json:"matched"`
		} `json:"summary"`
		Results []json.RawMessage `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if payload.Written || !payload.DryRun || payload.Summary.Total != 2 || len(payload.Results) != 2 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	testsupport.RequireMissing(t, filepath.Join(env.dir, "es1xx.merged.log"))
}

func TestMergeExportsAuditAndMetrics(t *testing.T) {
	env := setupCLIEnv(t)
	auditPath := filepath.Join(env.dir, "audit.db")
	metricsPath := filepath.Join(env.dir, "qsomerge.prom")

	out, _, err := runCLI(t, "merge", "--dry-run", "--audit-db", auditPath, "--metrics-file", metricsPath, env.logPath, env.notes)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	requireContains(t, out, auditPath)
	for _, path := range []string{auditPath, metricsPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected %s: %v", path, err)
		}
	}
}

func TestMergeErrorsMapToExitCodes(t *testing.T) {
	env := setupCLIEnv(t)

	_, _, err := runCLI(t, "merge", "--mode-policy", "loose", env.logPath)
	if !errors.Is(err, stage.ErrConfiguration) || stage.ExitCode(err) != 2 {
		t.Fatalf("expected configuration error, got %v", err)
	}

	_, _, err = runCLI(t, "merge", filepath.Join(env.dir, "missing.log"))
	if !errors.Is(err, stage.ErrNotFound) || stage.ExitCode(err) != 1 {
		t.Fatalf("expected not found error, got %v", err)
	}

	_, _, err = runCLI(t, "--log-format", "xml", "merge", env.logPath)
	if stage.ExitCode(err) != 2 {
		t.Fatalf("expected configuration error for log format, got %v", err)
	}
}

func TestDiffReportsAmendments(t *testing.T) {
	env := setupCLIEnv(t)
	revised := filepath.Join(env.dir, "es1xx-v2.log")
	testsupport.WriteFile(t, revised, strings.Replace(testLog, "OH1AA 59 005", "OH1AB 59 005", 1))

	out, _, err := runCLI(t, "diff", env.logPath, revised)
	if err != nil {
		t.Fatalf("diff: %v", err)
	}
	requireContains(t, out, "1 amendments")
	requireContains(t, out, "call: 'OH1AA' -> 'OH1AB'")

	out, _, err = runCLI(t, "diff", "--json", env.logPath, env.logPath)
	if err != nil {
		t.Fatalf("diff --json: %v", err)
	}
	requireContains(t, out, `"total": 0`)
}

func TestCallsignNormalizes(t *testing.T) {
	out, _, err := runCLI(t, "callsign", "ly2ts/p", "OH0/LY2TS", "59")
	if err != nil {
		t.Fatalf("callsign: %v", err)
	}
	requireContains(t, out, "ly2ts/p\tLY2TS\n")
	requireContains(t, out, "OH0/LY2TS\tOH0/LY2TS\n")
	requireContains(t, out, "59\t59\t(not a call sign)\n")
}

func TestConfigInitValidateShow(t *testing.T) {
	env := setupCLIEnv(t)
	target := filepath.Join(env.dir, "cfg", "qsomerge.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("expected init to refuse an existing file")
	}

	out, _, err = runCLI(t, "--config", target, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, "--config", target, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "[matching]")
	requireContains(t, out, "mode_policy = ")
	requireContains(t, out, "soft")
}
