// Package correlate links operator annotations to contest log records.
//
// BuildIndex groups primary records by normalized call sign, preserving
// sequence order and rejecting logs whose sequence indices are duplicated or
// out of order. Correlate then classifies every annotation independently
// against the index:
//
//  1. normalize the annotation's call sign
//  2. look up all records for that call
//  3. keep records on the same date within the minute tolerance
//  4. keep records on the annotation's band, when it names one
//  5. apply the mode policy (soft, strict or ignore)
//
// Zero survivors is Unmatched (with a reason), one is Matched, more than one
// is Ambiguous listing every survivor. Ambiguity is never resolved by picking
// a candidate. The index is immutable, so CorrelateParallel may fan the work
// out across goroutines and still return exactly what Correlate returns.
package correlate
