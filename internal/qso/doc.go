// Package qso defines the record types shared by the log reader, the
// annotation parser and the correlation engine.
//
// A PrimaryRecord is one contact from the contest log; an AnnotationRecord is
// one operator note that should be attached to a contact. Both carry a
// normalized identifier (the worked station's call sign), a minute-resolution
// timestamp and optional band/mode classifiers. Normalization lives here so
// every producer of records applies exactly the same rules.
package qso
