// Package config loads, normalizes, and validates qsomerge configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as
// QSOMERGE_ANNOTATIONS_DIR. Command-line flags are applied on top by the CLI
// after Load returns.
package config
