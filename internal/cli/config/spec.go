package config

// CLIConfig is the configuration for redmod-cli.
type CLIConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password,omitempty"`

	// Output is raw, json or yaml.
	Output string `yaml:"output"`

	// HistoryFile stores REPL history. Empty disables persistence.
	HistoryFile string `yaml:"history_file,omitempty"`
}

// Default values.
const (
	DefaultHost   = "127.0.0.1"
	DefaultPort   = 6379
	DefaultOutput = "raw"
)

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Host:   DefaultHost,
		Port:   DefaultPort,
		Output: DefaultOutput,
	}
}
