// Package config loads, normalizes, and validates subparse configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the SUBPARSE_FALLBACK_ENCODING environment override.
// Always obtain settings through this package so the CLI and session code see
// sanitized paths, canonical log formats, and clear validation errors.
package config
