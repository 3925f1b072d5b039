// Package metrics publishes merge run statistics in the Prometheus text
// format, suitable for the node_exporter textfile collector.
package metrics
