// Package stage holds the error markers and context keys shared by every
// merge-run stage.
//
// Stages wrap failures with Wrap so the CLI can classify them (configuration,
// validation, invariant, I/O) without string matching, and annotate contexts
// with the run id and stage name so the logging package can tag every line.
package stage
