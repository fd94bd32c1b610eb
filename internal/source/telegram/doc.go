// Package telegram implements the source.Client interface over MTProto using
// gotd. Sessions are stored in the archive database, flood waits are mapped
// to source.RateLimitError, and access errors are tagged with the services
// error markers so callers can classify failures without RPC knowledge.
package telegram
