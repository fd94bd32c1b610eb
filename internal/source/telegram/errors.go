package telegram

import (
	"errors"
	"fmt"
	"io"
	"net"

	"github.com/gotd/td/tgerr"

	"chanvault/internal/services"
	"chanvault/internal/source"
)

// translate maps MTProto errors onto the source package's error vocabulary so
// callers never have to know RPC error codes.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if wait, ok := tgerr.AsFloodWait(err); ok {
		return fmt.Errorf("%s: %w", op, &source.RateLimitError{Wait: wait})
	}
	if tgerr.Is(err, "CHANNEL_PRIVATE", "CHAT_ADMIN_REQUIRED", "CHAT_WRITE_FORBIDDEN") {
		return fmt.Errorf("%s: %w: %w", op, services.ErrForbidden, err)
	}
	if tgerr.Is(err, "CHANNEL_INVALID", "PEER_ID_INVALID", "USERNAME_NOT_OCCUPIED", "USERNAME_INVALID", "MSG_ID_INVALID") {
		return fmt.Errorf("%s: %w: %w", op, services.ErrNotFound, err)
	}
	if isConnectionErr(err) {
		return fmt.Errorf("%s: %w: %w", op, services.ErrUnavailable, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// isConnectionErr reports transport-level failures, which callers treat as an
// outage to wait out rather than an item failure.
func isConnectionErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, net.ErrClosed)
}
