package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrSourceUnavailable wraps any mailbox listing failure. The orchestrator
// aborts the cycle without touching the watermark when it sees this.
var ErrSourceUnavailable = errors.New("mail source unavailable")

// MessageRef is a lightweight handle returned by a listing call.
type MessageRef struct {
	ID string
}

// Message is one fetched mailbox message.
type Message struct {
	ID      string
	Subject string
	From    string
	Date    string
	Body    string
}

// MailSource fetches candidate messages from the external mailbox. The
// connector's authentication and token refresh live entirely behind this
// interface.
type MailSource interface {
	// ListSince returns references to messages received at or after the
	// watermark, bounded by limit. Failures wrap ErrSourceUnavailable.
	ListSince(ctx context.Context, since time.Time, limit int) ([]MessageRef, error)

	// Get fetches one full message by ID.
	Get(ctx context.Context, id string) (*Message, error)
}
