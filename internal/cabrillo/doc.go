// Package cabrillo reads contest logs in the Cabrillo format.
//
// Only QSO: lines become records; everything else (the header, interleaved
// comments, END-OF-LOG:) is retained verbatim so the merged log can be
// re-emitted without loss. Each record's sequence index is its 1-based line
// number in the source file.
package cabrillo
