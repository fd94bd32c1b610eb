// Package scanner discovers binary attachments in monitored channels. Each
// pass resolves the channel, lists messages past the stored watermark,
// records audio and PDF attachments as pending transfer items, and advances
// the watermark to the highest examined message.
package scanner
