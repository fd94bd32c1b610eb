// Package transfer moves approved attachments from the source channel into
// object storage. The queue bounds in-flight work and suppresses duplicates;
// the worker drives each item through download, hashing, duplicate detection,
// and upload, with retry accounting persisted in the store.
package transfer
