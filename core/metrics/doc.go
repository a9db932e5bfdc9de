// Package metrics exposes Prometheus collectors for jobs, storage operations,
// resolver probes and fan-in progress. Collectors register with the default
// registry on import; the serve command publishes them at /metrics.
package metrics
