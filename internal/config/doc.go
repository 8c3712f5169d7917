// Package config loads, normalizes, and validates dubsync configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// DUBSYNC_WORKSPACE. The Config type centralizes every knob the CLI and
// pipeline stages need, so workspace layout, pacing limits, and external
// tool settings are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
