// Package main provides the entry point for redmod-server.
//
// redmod-server serves the RESP protocol over TCP from a single
// in-memory keyspace with TTL expiry and channel pub/sub. When metrics
// are enabled it also serves /metrics and /healthz over HTTP.
//
// Usage:
//
//	redmod-server [flags]
//	redmod-server --config /etc/redmod/redmod.yaml --port 6380
//
// Settings are layered as defaults, configuration file, REDMOD_*
// environment variables and flags. Changing log.level in the file takes
// effect without a restart.
package main
