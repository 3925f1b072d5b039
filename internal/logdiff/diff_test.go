package logdiff

import (
	"reflect"
	"strings"
	"testing"

	"qsomerge/internal/cabrillo"
)

const rev0 = `START-OF-LOG: 3.0
CALLSIGN: ES1XX
QSO: 3500 PH 2026-01-11 0707 ES1XX 59 001 HA LY2TS 59 004 VL
QSO: 3500 PH 2026-01-11 0708 ES1XX 59 002 HA SA0IAT 59 010 AB
QSO: 3500 CW 2026-01-11 0712 ES1XX 599 003 HA OH0Z 599 020 AL
END-OF-LOG:
`

const rev4 = `START-OF-LOG: 3.0
CALLSIGN: ES1XX
QSO: 3500 PH 2026-01-11 0707 ES1XX 59 001 HA LY2TS 59 004 VL
QSO: 3500 PH 2026-01-11 0709 ES1XX 59 002 HA SA0IAT 59 011 AB
END-OF-LOG:
`

func readLog(t *testing.T, text string) *cabrillo.Log {
	t.Helper()
	log, err := cabrillo.Read(strings.NewReader(text), cabrillo.DefaultOptions())
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	return log
}

func TestCompareChangedAndRemoved(t *testing.T) {
	report := Compare(readLog(t, rev0), readLog(t, rev4))
	if report.Total != 2 || len(report.Amendments) != 2 {
		t.Fatalf("unexpected report %+v", report)
	}

	changed := report.Amendments[0]
	if changed.Number != 1 || changed.Kind != KindChanged || changed.OldLine != 4 || changed.NewLine != 4 {
		t.Fatalf("unexpected changed amendment %+v", changed)
	}
	want := []FieldChange{
		{Field: "time", Old: "0708", New: "0709"},
		{Field: "seq_rcvd", Old: "010", New: "011"},
	}
	if !reflect.DeepEqual(changed.Changes, want) {
		t.Fatalf("Changes = %+v", changed.Changes)
	}

	removed := report.Amendments[1]
	if removed.Kind != KindRemoved || removed.OldLine != 5 || removed.NewLine != 0 {
		t.Fatalf("unexpected removed amendment %+v", removed)
	}
}

func TestCompareAdded(t *testing.T) {
	report := Compare(readLog(t, rev4), readLog(t, rev0))
	last := report.Amendments[len(report.Amendments)-1]
	if last.Kind != KindAdded || last.NewLine != 5 || !strings.Contains(last.New, "OH0Z") {
		t.Fatalf("unexpected added amendment %+v", last)
	}
}

func TestCompareIdenticalIgnoresSpacing(t *testing.T) {
	spaced := strings.ReplaceAll(rev0, "ES1XX 59 001", "ES1XX  59  001")
	report := Compare(readLog(t, rev0), readLog(t, spaced))
	if report.Total != 0 || report.Amendments == nil {
		t.Fatalf("expected no amendments, got %+v", report)
	}
	if got := Compare(nil, nil); got.Total != 0 {
		t.Fatalf("nil logs produced amendments: %+v", got)
	}
}

func TestFieldName(t *testing.T) {
	if FieldName(0) != "freq" || FieldName(8) != "call" || FieldName(11) != "their_region" {
		t.Fatal("unexpected named fields")
	}
	if FieldName(12) != "field_13" {
		t.Fatalf("FieldName(12) = %q", FieldName(12))
	}
	change := FieldChange{Field: "time", Old: "0708", New: "0709"}
	if change.String() != "time: '0708' -> '0709'" {
		t.Fatalf("String() = %q", change.String())
	}
}
