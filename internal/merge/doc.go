// Package merge rebuilds the contest log with correlated notes attached.
//
// Every primary line is emitted exactly once in sequence order. Matched
// annotations follow their contact as NOTE comment lines; annotations that
// could not be placed are collected into an UNRESOLVED trailer so nothing
// is silently dropped.
package merge
