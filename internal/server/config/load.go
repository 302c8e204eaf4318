package config

import (
	"fmt"

	"github.com/yndnr/redmod-go/internal/infra/confloader"
)

// Environment variables accepted besides the REDMOD_SECTION_KEY form.
var envAliases = map[string]string{
	"BIND_IP":   "server.bind",
	"BIND_PORT": "server.port",
}

// NewLoader returns a loader layering defaults, the file at path (when
// not empty), REDMOD_ environment variables and overrides.
func NewLoader(path string, overrides map[string]any) *confloader.Loader {
	opts := []confloader.Option{
		confloader.WithDefaults(DefaultMap()),
		confloader.WithOverrides(overrides),
	}
	if path != "" {
		opts = append(opts, confloader.WithConfigFile(path))
	}
	for name, key := range envAliases {
		opts = append(opts, confloader.WithEnvAlias(name, key))
	}
	return confloader.NewLoader(opts...)
}

// Load unmarshals and verifies the configuration held by l. It is used
// both at start-up and when the file changes.
func Load(l *confloader.Loader) (*ServerConfig, error) {
	cfg := Default()
	var err error
	if l.IsLoaded() {
		err = l.Reload(cfg)
	} else {
		err = l.Load(cfg)
	}
	if err != nil {
		return nil, err
	}
	if err := Verify(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
