// Package workflow supervises the archive pipeline. The manager owns the
// scanner, transfer worker, and reconciler loops, rebuilding queue state at
// startup and shutting all three down together.
package workflow
