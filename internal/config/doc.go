// Package config loads, normalizes, and validates capsgen configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), and reads TOML files. Generation defaults declared here can be
// overridden per invocation by CLI flags.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
