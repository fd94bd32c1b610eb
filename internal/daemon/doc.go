// Package daemon wires the production backends together and runs the archive
// workflow as a single-instance background process.
package daemon
