// Package httpserver serves redmod's operational HTTP endpoints:
//
//   - GET /healthz: liveness, 200 while the RESP listener is up
//   - GET /metrics: Prometheus exposition
//
// Every request gets an X-Request-ID and an access log line. The optional
// metrics.allowlist restricts /metrics to the listed clients.
package httpserver
