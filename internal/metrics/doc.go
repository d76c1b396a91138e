// Package metrics defines Prometheus metrics for the build pipeline.
//
// Metrics are registered with the default registry via promauto. The
// preview server exposes them live on /metrics; the process command
// writes them to a text-format snapshot before exiting, since its
// counters would otherwise vanish with the process.
package metrics
