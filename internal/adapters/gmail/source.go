// Package gmail implements the mail source port against the Gmail REST API.
// Token handling is the thin wrapper it looks like: credentials and a
// previously authorized token are read from disk, nothing more.
package gmail

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/example/inkwell/internal/ports/secondary"
)

// Source implements secondary.MailSource for one Gmail mailbox.
type Source struct {
	svc *gmailapi.Service
}

// New builds a Gmail source from a credentials file and a stored token.
func New(ctx context.Context, credentialsFile, tokenFile string) (*Source, error) {
	creds, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read gmail credentials: %w", err)
	}

	cfg, err := google.ConfigFromJSON(creds, gmailapi.GmailReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse gmail credentials: %w", err)
	}

	tok, err := readToken(tokenFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read gmail token: %w", err)
	}

	svc, err := gmailapi.NewService(ctx, option.WithHTTPClient(cfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}

	return &Source{svc: svc}, nil
}

func readToken(path string) (*oauth2.Token, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, err
	}
	return &tok, nil
}

// ListSince returns references to messages after the watermark. Gmail's
// query granularity is a day, so the dedup ledger handles the rest.
func (s *Source) ListSince(ctx context.Context, since time.Time, limit int) ([]secondary.MessageRef, error) {
	query := fmt.Sprintf("after:%s", since.Format("2006/01/02"))

	res, err := s.svc.Users.Messages.List("me").
		Q(query).
		MaxResults(int64(limit)).
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secondary.ErrSourceUnavailable, err)
	}

	refs := make([]secondary.MessageRef, 0, len(res.Messages))
	for _, m := range res.Messages {
		refs = append(refs, secondary.MessageRef{ID: m.Id})
	}
	return refs, nil
}

// Get fetches one full message and flattens it to subject/sender/date/body.
func (s *Source) Get(ctx context.Context, id string) (*secondary.Message, error) {
	m, err := s.svc.Users.Messages.Get("me", id).Format("full").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch message %s: %w", id, err)
	}

	msg := &secondary.Message{ID: id}
	if m.Payload != nil {
		for _, h := range m.Payload.Headers {
			switch h.Name {
			case "Subject":
				msg.Subject = h.Value
			case "From":
				msg.From = h.Value
			case "Date":
				msg.Date = h.Value
			}
		}
		msg.Body = extractBody(m.Payload)
	}
	if msg.Body == "" {
		msg.Body = m.Snippet
	}
	return msg, nil
}

// extractBody walks the MIME tree for the first text/plain part.
func extractBody(part *gmailapi.MessagePart) string {
	if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
		if decoded, err := base64.URLEncoding.DecodeString(part.Body.Data); err == nil {
			return string(decoded)
		}
	}
	for _, p := range part.Parts {
		if body := extractBody(p); body != "" {
			return body
		}
	}
	return ""
}
