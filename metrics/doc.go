// Package metrics provides Prometheus instrumentation for webmgen.
//
// All metrics are prefixed with "webmgen_" and registered on the default
// registry through promauto. They are exposed by the local HTTP API on
// /metrics.
//
// # Metric Categories
//
// HTTP metrics track the local API:
//   - HTTPRequestsTotal: requests by method, route and status
//   - HTTPRequestDuration: request latency by method and route
//   - HTTPRequestsInFlight: requests currently being served
//
// Domain metrics track the work behind every surface:
//   - ProbesTotal / ProbeDuration: ffprobe inspections by outcome
//   - ScriptsRenderedTotal: rendered scripts by surface and kind
//   - ClipboardCopiesTotal: clipboard writes by result
package metrics
