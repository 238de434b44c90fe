// Package config loads, normalizes, and validates vidsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. The Config type centralizes the knobs the
// comparison engine and CLI need: tool binaries, cache locations, search
// step sizes, and identity-verdict thresholds.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
