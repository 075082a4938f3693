// Package metrics defines the Prometheus collectors grocer exports.
//
// The api.Client observes every remote command (count by outcome and latency).
// The serve command exposes the registry at /metrics.
package metrics
