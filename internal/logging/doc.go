// Package logging builds the slog loggers used across the daemon. It offers a
// human-readable console format that promotes the component attribute into the
// line prefix, and a JSON format for machine consumption, plus the shared
// attribute keys that keep records consistent between components.
package logging
