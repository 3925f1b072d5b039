// Package annotations discovers operator note files and parses their lines
// into qso.AnnotationRecord values.
//
// Note lines follow the field-station convention
//
//	STATION SEQ# DATE TIME [BAND] [MODE] CALLSIGN : NOTE
//
// Lines that are too broken to attribute are reported as Issues instead of
// records; lines that only carry a bad timestamp or call sign still become
// records so the correlator can account for them as unmatched.
package annotations
