// Package config defines the redmod-server configuration structure, its
// defaults and validation.
//
// Keys follow the server's own naming (server.bind, server.maxclients,
// security.requirepass, ...). Values are loaded by the confloader package
// from defaults, an optional YAML file, REDMOD_* environment variables and
// command line flags, in that order of precedence.
package config
