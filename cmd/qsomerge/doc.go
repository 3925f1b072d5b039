// Package main hosts the qsomerge CLI entrypoint and command graph.
//
// The Cobra command tree resolves configuration, builds the structured
// logger and hands contest logs plus operator annotation files to the merge
// workflow. It also exposes revision diffs, call sign normalization and
// configuration scaffolding. Commands stay thin: matching, assembly and
// exports live in the internal packages.
package main
