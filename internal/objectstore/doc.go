// Package objectstore wraps the archive's object storage: bucket management,
// uploads, existence checks, and the canonical "bucket/object" storage path
// format recorded on completed items.
package objectstore
