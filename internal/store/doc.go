// Package store persists the archive's bookkeeping in SQLite: monitored
// channels with their scan watermarks, transfer items with their lifecycle
// status, and serialized Telegram sessions. All access goes through Store,
// which applies WAL mode and retries on transient SQLITE_BUSY errors so the
// daemon and CLI can share one database file.
package store
