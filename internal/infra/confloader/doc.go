// Package confloader loads layered configuration with koanf.
//
// Sources are merged in this order, later ones winning:
//
//  1. Defaults supplied by the caller
//  2. YAML configuration file
//  3. Environment variables (REDMOD_SECTION_KEY)
//  4. Overrides, typically command-line flags
//
// Keys are lower-case and dot-delimited with no underscores, so an
// environment variable maps onto a key by replacing every underscore
// with a dot. Aliases cover variables that do not follow that shape.
//
// A Watcher reports changes of the configuration file so that callers
// can reload the settings that are safe to change at runtime.
package confloader
