// Package config holds redmod-cli preferences.
//
// Preferences are read from ~/.redmod/cli.yaml when it exists. Flags
// and REDMOD_CLI_* environment variables override the file.
package config
