// Package metric exposes redmod's Prometheus metrics.
//
// Registry owns a private prometheus.Registry with the Go and process
// collectors, the command and connection counters, and a Collector that
// samples keyspace and client gauges at scrape time. Registry satisfies
// command.Observer and redisserver.Metrics.
//
// Metrics are exposed at /metrics by the HTTP server.
package metric
