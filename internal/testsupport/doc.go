// Package testsupport provides shared test fixtures: temp-dir configs, store
// helpers, and in-memory fakes for the message source, object storage, and
// notification service.
package testsupport
