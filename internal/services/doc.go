// Package services defines shared utilities consumed by the scanner, transfer
// worker, and reconciler.
//
// Key responsibilities:
//   - Context helpers that stamp item IDs, channel IDs, task names, and
//     correlation identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent transfer statuses and retry decisions.
//
// Use these helpers when wiring new task logic so operational behaviour (error
// handling, observability, retries) stays uniform across the pipeline.
package services
