// Package workflow runs one merge from input files to written artifacts.
//
// A run reads the Cabrillo log, loads annotation files, builds the candidate
// index, correlates, assembles the merged log, writes it, and finally
// summarizes and exports the outcome. Each step executes through stageexec
// so logs carry the run id and stage name. Per-line annotation problems are
// logged and counted; only I/O failures and log ordering violations abort a
// run.
package workflow
