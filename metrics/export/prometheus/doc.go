// Package prometheus exposes goAset metrics through prometheus/client_golang.
//
// [Exporter] implements prometheus.Collector. Counter names are
// goaset_*_total; the backend latency histogram is
// goaset_backend_latency_seconds.
//
// # What this package must NOT do
//
//   - Register with the global Prometheus registry.
//   - Mutate manager state.
package prometheus
