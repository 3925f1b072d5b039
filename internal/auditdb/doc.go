// Package auditdb exports a finished merge run into a SQLite database.
//
// Each export recreates the file so the database always describes exactly
// one run: the primary records, every annotation with its outcome, and the
// candidate links behind each Matched or Ambiguous result. The database is
// meant for ad-hoc SQL inspection after a contest.
package auditdb
