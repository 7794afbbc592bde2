// Package config loads shell configuration from the environment, with an
// optional TOML rc file overlay.
//
// Precedence, lowest to highest: struct defaults, environment variables,
// rc file values. LoadOrDefault never fails; the CLI uses it so a broken
// environment still yields a working shell.
package config
