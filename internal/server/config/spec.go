package config

// ServerConfig is the root configuration for redmod-server.
type ServerConfig struct {
	Server   ServerSection   `koanf:"server"`
	Security SecuritySection `koanf:"security"`
	Proto    ProtoSection    `koanf:"proto"`
	Metrics  MetricsSection  `koanf:"metrics"`
	Log      LogSection      `koanf:"log"`
}

// ServerSection configures the RESP listener.
type ServerSection struct {
	// Bind is the IP address to listen on.
	Bind string `koanf:"bind"`

	// Port is the TCP port to listen on.
	Port int `koanf:"port"`

	// Timeout closes connections idle for this many seconds. 0 disables it.
	Timeout int `koanf:"timeout"`

	// MaxClients limits concurrent connections. 0 means unlimited.
	MaxClients int `koanf:"maxclients"`

	// RateLimit is the per-connection command rate (commands/second).
	// 0 disables rate limiting.
	RateLimit int `koanf:"ratelimit"`

	// OutputBuffer is the number of replies queued per connection before a
	// client that does not read is disconnected.
	OutputBuffer int `koanf:"outputbuffer"`

	// UnixSocket is an additional socket path to listen on. Empty disables it.
	UnixSocket string `koanf:"unixsocket"`

	// UnixSocketPerm is the socket file mode written as octal digits, e.g. 700.
	UnixSocketPerm int `koanf:"unixsocketperm"`
}

// SecuritySection configures client authentication.
type SecuritySection struct {
	// RequirePass, when set, must be sent with AUTH before other commands.
	RequirePass string `koanf:"requirepass"`
}

// ProtoSection bounds decoded request frames. 0 keeps the built-in limit.
type ProtoSection struct {
	MaxBulkLen   int `koanf:"maxbulklen"`
	MaxArrayLen  int `koanf:"maxarraylen"`
	MaxInlineLen int `koanf:"maxinlinelen"`
	MaxDepth     int `koanf:"maxdepth"`
}

// MetricsSection configures the HTTP endpoint serving /metrics and /healthz.
type MetricsSection struct {
	Enabled bool   `koanf:"enabled"`
	Addr    string `koanf:"addr"`

	// AllowList is the IP/CIDR allowlist for /metrics (empty = no restriction).
	AllowList []string `koanf:"allowlist"`
}

// LogSection configures logging.
type LogSection struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}
