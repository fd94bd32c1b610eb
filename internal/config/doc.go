// Package config loads, normalizes, and validates chanvault configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// TELEGRAM_API_HASH and MINIO_SECRET_KEY. The Config type centralizes every
// knob the daemon and CLI need: directories, source credentials, object store
// connection, scan/transfer/reconcile timing, and category-to-bucket naming.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
