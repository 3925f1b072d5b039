package correlate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"qsomerge/internal/qso"
)

// Correlate classifies every annotation against index. Results are in the
// same order as annotations.
func Correlate(annotations []qso.AnnotationRecord, index *Index, policy Policy) []MatchResult {
	p := policy.normalized()
	results := make([]MatchResult, len(annotations))
	for i, annotation := range annotations {
		results[i] = classify(annotation, index, p)
	}
	return results
}

// CorrelateParallel is Correlate spread over up to workers goroutines. Each
// result is written to its annotation's position, so the output is identical
// to Correlate. It only fails when ctx is cancelled.
func CorrelateParallel(ctx context.Context, annotations []qso.AnnotationRecord, index *Index, policy Policy, workers int) ([]MatchResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if workers <= 1 || len(annotations) < 2 {
		return Correlate(annotations, index, policy), nil
	}

	p := policy.normalized()
	results := make([]MatchResult, len(annotations))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range annotations {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = classify(annotations[i], index, p)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// Classify correlates a single annotation.
func Classify(annotation qso.AnnotationRecord, index *Index, policy Policy) MatchResult {
	return classify(annotation, index, policy.normalized())
}

func classify(annotation qso.AnnotationRecord, index *Index, p Policy) MatchResult {
	result := MatchResult{Annotation: annotation}
	unmatched := func(reason Reason) MatchResult {
		result.Outcome = Unmatched{Reason: reason}
		return result
	}

	id := qso.NormalizeCallsign(annotation.Identifier)
	if !qso.ValidCallsign(id) {
		return unmatched(ReasonInvalidIdentifier)
	}
	if annotation.Timestamp.IsZero() {
		return unmatched(ReasonInvalidTimestamp)
	}

	candidates := index.Lookup(id)
	if len(candidates) == 0 {
		return unmatched(ReasonUnknownIdentifier)
	}

	candidates = filter(candidates, func(r qso.PrimaryRecord) bool {
		return qso.SameDate(r.Timestamp, annotation.Timestamp) &&
			qso.MinutesApart(r.Timestamp, annotation.Timestamp) <= p.ToleranceMinutes
	})
	if len(candidates) == 0 {
		return unmatched(ReasonOutsideWindow)
	}

	if annotation.Band != qso.BandUnknown {
		candidates = filter(candidates, func(r qso.PrimaryRecord) bool {
			return r.Band == qso.BandUnknown || r.Band == annotation.Band
		})
		if len(candidates) == 0 {
			return unmatched(ReasonBandMismatch)
		}
	}

	if annotation.Mode != qso.ModeUnknown && p.Mode != ModeIgnore {
		agreeing := filter(candidates, func(r qso.PrimaryRecord) bool {
			return r.Mode == qso.ModeUnknown || r.Mode == annotation.Mode
		})
		switch {
		case len(agreeing) > 0:
			candidates = agreeing
		case p.Mode == ModeStrict:
			return unmatched(ReasonModeMismatch)
		default:
			result.ModeMismatch = true
		}
	}

	switch len(candidates) {
	case 1:
		result.Outcome = Matched{Target: candidates[0]}
	default:
		result.Outcome = Ambiguous{Targets: candidates}
	}
	return result
}

func filter(records []qso.PrimaryRecord, keep func(qso.PrimaryRecord) bool) []qso.PrimaryRecord {
	out := make([]qso.PrimaryRecord, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}
