package config

// Default configuration values.
const (
	DefaultBind         = "0.0.0.0"
	DefaultPort         = 6379
	DefaultMaxClients   = 10000
	DefaultOutputBuffer = 1024

	DefaultUnixSocketPerm = 700

	DefaultMetricsAddr = "127.0.0.1:9121"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "text"
)

// Default returns the default server configuration.
func Default() *ServerConfig {
	return &ServerConfig{
		Server: ServerSection{
			Bind:           DefaultBind,
			Port:           DefaultPort,
			MaxClients:     DefaultMaxClients,
			OutputBuffer:   DefaultOutputBuffer,
			UnixSocketPerm: DefaultUnixSocketPerm,
		},
		Metrics: MetricsSection{
			Addr: DefaultMetricsAddr,
		},
		Log: LogSection{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// DefaultMap returns the defaults as a flat koanf key map.
func DefaultMap() map[string]any {
	d := Default()
	return map[string]any{
		"server.bind":           d.Server.Bind,
		"server.port":           d.Server.Port,
		"server.timeout":        d.Server.Timeout,
		"server.maxclients":     d.Server.MaxClients,
		"server.ratelimit":      d.Server.RateLimit,
		"server.outputbuffer":   d.Server.OutputBuffer,
		"server.unixsocket":     d.Server.UnixSocket,
		"server.unixsocketperm": d.Server.UnixSocketPerm,
		"metrics.enabled":       d.Metrics.Enabled,
		"metrics.addr":          d.Metrics.Addr,
		"log.level":             d.Log.Level,
		"log.format":            d.Log.Format,
	}
}
