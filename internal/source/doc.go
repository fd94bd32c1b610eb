// Package source defines the channel message source consumed by the scanner
// and transfer worker: the Client interface, attachment classification, and
// name synthesis for attachments that arrive without one. The Telegram
// implementation lives in the telegram subpackage.
package source
