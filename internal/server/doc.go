// Package server exposes the HTTP endpoints of a long-running freerooms
// process (the watch command).
//
// MetricsServer serves:
//   - /metrics: Prometheus metrics from the instrumentation provider's registry
//   - /healthz: liveness, always OK while the process runs
//   - /readyz: readiness, OK once a check has completed and the last one succeeded
//   - /healthz/detailed: uptime, number of checks and the last error
package server
