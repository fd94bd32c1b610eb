// Package reconciler keeps the database honest about what object storage
// actually holds. Completed items whose objects have disappeared are reverted
// so the pipeline re-archives them.
package reconciler
