// Package config loads, normalizes, and validates the TOML configuration
// that drives the dubbing pipeline: service credentials, working
// directories, alignment tunables, and logging output.
package config
