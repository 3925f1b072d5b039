// Package reconcile summarizes correlation outcomes per run and per station.
package reconcile
