package correlate

import (
	"encoding/json"

	"qsomerge/internal/qso"
)

// Kind names an outcome variant.
type Kind string

const (
	KindMatched   Kind = "matched"
	KindAmbiguous Kind = "ambiguous"
	KindUnmatched Kind = "unmatched"
)

// Reason explains an Unmatched outcome.
type Reason string

const (
	ReasonInvalidIdentifier Reason = "invalid_identifier"
	ReasonInvalidTimestamp  Reason = "invalid_timestamp"
	ReasonUnknownIdentifier Reason = "unknown_identifier"
	ReasonOutsideWindow     Reason = "outside_window"
	ReasonBandMismatch      Reason = "band_mismatch"
	ReasonModeMismatch      Reason = "mode_mismatch"
)

// Outcome is the closed set Matched, Ambiguous, Unmatched. Consumers switch
// on the concrete type.
type Outcome interface {
	Kind() Kind
	isOutcome()
}

// Matched links the annotation to exactly one record.
type Matched struct {
	Target qso.PrimaryRecord
}

// Ambiguous lists every surviving candidate in sequence order.
type Ambiguous struct {
	Targets []qso.PrimaryRecord
}

// Unmatched means no candidate survived.
type Unmatched struct {
	Reason Reason
}

func (Matched) Kind() Kind   { return KindMatched }
func (Ambiguous) Kind() Kind { return KindAmbiguous }
func (Unmatched) Kind() Kind { return KindUnmatched }

func (Matched) isOutcome()   {}
func (Ambiguous) isOutcome() {}
func (Unmatched) isOutcome() {}

// MatchResult is the immutable classification of one annotation.
type MatchResult struct {
	Annotation qso.AnnotationRecord
	Outcome    Outcome
	// ModeMismatch is the soft signal raised when the annotation's mode
	// disagreed with every candidate and was overridden.
	ModeMismatch bool
}

// Candidates returns the records the outcome refers to.
func (r MatchResult) Candidates() []qso.PrimaryRecord {
	switch o := r.Outcome.(type) {
	case Matched:
		return []qso.PrimaryRecord{o.Target}
	case Ambiguous:
		return o.Targets
	default:
		return nil
	}
}

// Kind returns the outcome kind, treating a missing outcome as unmatched.
func (r MatchResult) Kind() Kind {
	if r.Outcome == nil {
		return KindUnmatched
	}
	return r.Outcome.Kind()
}

type resultJSON struct {
	Annotation   qso.AnnotationRecord `json:"annotation"`
	Outcome      Kind                 `json:"outcome"`
	Reason       Reason               `json:"reason,omitempty"`
	Targets      []int                `json:"targets,omitempty"`
	ModeMismatch bool                 `json:"mode_mismatch,omitempty"`
}

// MarshalJSON flattens the outcome variant into kind, reason and target
// sequence indices.
func (r MatchResult) MarshalJSON() ([]byte, error) {
	out := resultJSON{
		Annotation:   r.Annotation,
		Outcome:      r.Kind(),
		ModeMismatch: r.ModeMismatch,
	}
	if u, ok := r.Outcome.(Unmatched); ok {
		out.Reason = u.Reason
	}
	for _, c := range r.Candidates() {
		out.Targets = append(out.Targets, c.SequenceIndex)
	}
	return json.Marshal(out)
}
