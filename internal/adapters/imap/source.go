// Package imap implements the mail source port over IMAP for mailboxes
// without a Gmail API surface.
package imap

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"

	"github.com/example/inkwell/internal/ports/secondary"
)

// Source implements secondary.MailSource over an IMAP connection. A fresh
// connection is made per call; polling is minutes-coarse so connection reuse
// buys nothing worth the reconnect handling.
type Source struct {
	host     string
	username string
	password string
	mailbox  string
}

// New creates an IMAP source. host includes the port (e.g. mail.example.com:993).
func New(host, username, password, mailbox string) *Source {
	if mailbox == "" {
		mailbox = "INBOX"
	}
	return &Source{host: host, username: username, password: password, mailbox: mailbox}
}

func (s *Source) connect() (*client.Client, error) {
	c, err := client.DialTLS(s.host, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", s.host, err)
	}
	if err := c.Login(s.username, s.password); err != nil {
		c.Logout()
		return nil, fmt.Errorf("imap login failed: %w", err)
	}
	if _, err := c.Select(s.mailbox, true); err != nil {
		c.Logout()
		return nil, fmt.Errorf("failed to select %s: %w", s.mailbox, err)
	}
	return c, nil
}

// ListSince searches the mailbox for messages received since the watermark.
// IMAP SINCE has day granularity; the dedup ledger filters the rest.
func (s *Source) ListSince(ctx context.Context, since time.Time, limit int) ([]secondary.MessageRef, error) {
	c, err := s.connect()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secondary.ErrSourceUnavailable, err)
	}
	defer c.Logout()

	criteria := imap.NewSearchCriteria()
	criteria.Since = since
	uids, err := c.UidSearch(criteria)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secondary.ErrSourceUnavailable, err)
	}

	if limit > 0 && len(uids) > limit {
		uids = uids[:limit]
	}

	refs := make([]secondary.MessageRef, 0, len(uids))
	for _, uid := range uids {
		refs = append(refs, secondary.MessageRef{ID: fmt.Sprintf("%d", uid)})
	}
	return refs, nil
}

// Get fetches one message by UID and flattens envelope + text body.
func (s *Source) Get(ctx context.Context, id string) (*secondary.Message, error) {
	var uid uint32
	if _, err := fmt.Sscanf(id, "%d", &uid); err != nil {
		return nil, fmt.Errorf("invalid imap uid %q: %w", id, err)
	}

	c, err := s.connect()
	if err != nil {
		return nil, err
	}
	defer c.Logout()

	seq := new(imap.SeqSet)
	seq.AddNum(uid)

	section := &imap.BodySectionName{BodyPartName: imap.BodyPartName{Specifier: imap.TextSpecifier}}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	done := make(chan error, 1)
	go func() {
		done <- c.UidFetch(seq, items, messages)
	}()

	msg := <-messages
	if err := <-done; err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}
	if msg == nil {
		return nil, fmt.Errorf("message %s not found", id)
	}

	out := &secondary.Message{ID: id}
	if env := msg.Envelope; env != nil {
		out.Subject = env.Subject
		out.Date = env.Date.Format(time.RFC1123Z)
		if len(env.From) > 0 {
			out.From = env.From[0].Address()
		}
	}
	if r := msg.GetBody(section); r != nil {
		body, err := io.ReadAll(r)
		if err == nil {
			out.Body = string(body)
		}
	}
	return out, nil
}
