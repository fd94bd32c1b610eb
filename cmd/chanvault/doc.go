// Command chanvault is the operator interface to the channel archive: it runs
// the background daemon and provides channel management, queue inspection,
// approvals, and one-shot scans against the shared database.
package main
