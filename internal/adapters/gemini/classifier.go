// Package gemini implements the classifier port against Google's Gemini API.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/example/inkwell/internal/core/classify"
	"github.com/example/inkwell/internal/ports/secondary"
)

// maxBodyChars bounds the message body sent to the model.
const maxBodyChars = 4000

const promptTemplate = `You are a mission dispatcher. Analyze the email below and decide whether it
contains an actionable task (MISSION), a personal note worth printing
(MESSAGE), or neither (IGNORE).

Respond with STRICT JSON only, no markdown, no commentary:
{
  "type": "MISSION" | "MESSAGE" | "IGNORE",
  "has_task": true | false,
  "confidence": 0.0-1.0,
  "reasoning": "one sentence",
  "mission_briefing": {              // only when has_task is true
    "mission_id": "MI-<8 chars of the email id, uppercased>",
    "title": "short imperative title",
    "urgency": "CRITICAL" | "HIGH" | "MEDIUM" | "LOW" | "INFO",
    "deadline": "free-form deadline or empty",
    "action_required": "what the operator must do",
    "context": "one or two sentences of background",
    "people_involved": ["names or addresses"]
  },
  "receipt_data": {                  // only when type is MESSAGE
    "sender": "display name of the sender",
    "message": "the message text to print"
  }
}

EMAIL
Subject: %s
From: %s
Date: %s
Body:
%s`

// Classifier implements secondary.Classifier using the genai SDK.
type Classifier struct {
	client *genai.Client
	model  string
}

// New creates a Gemini-backed classifier.
func New(ctx context.Context, apiKey, model string) (*Classifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Classifier{client: client, model: model}, nil
}

// Classify sends the message through the fixed prompt template and parses
// the structured decision. Transport failures wrap ErrClassifierUnavailable;
// unparseable responses wrap classify.ErrMalformedDecision.
func (c *Classifier) Classify(ctx context.Context, msg *secondary.Message) (*classify.Decision, error) {
	prompt := BuildPrompt(msg)

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", secondary.ErrClassifierUnavailable, err)
	}

	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: empty response", classify.ErrMalformedDecision)
	}

	return classify.ParseDecision(text)
}

// BuildPrompt renders the instruction template for one message, truncating
// the body to the configured bound.
func BuildPrompt(msg *secondary.Message) string {
	body := msg.Body
	if len(body) > maxBodyChars {
		body = body[:maxBodyChars]
	}
	return fmt.Sprintf(promptTemplate, msg.Subject, msg.From, msg.Date, body)
}
