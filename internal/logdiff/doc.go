// Package logdiff compares two revisions of a Cabrillo log QSO by QSO.
//
// Records are paired by position, so an inserted or deleted contact shifts
// every later pairing. This matches how log revisions are usually produced:
// the operator edits lines in place and appends late additions.
package logdiff
