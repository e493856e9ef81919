// Package config loads, normalizes, and validates hitqueue configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours the HITQUEUE_ENDPOINT environment
// fallback for the delivery endpoint. The Config type centralizes every knob
// the daemon and CLI need so the queue location, delivery settings and
// startup privacy state are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
