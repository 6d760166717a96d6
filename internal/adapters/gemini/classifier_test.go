package gemini

import (
	"strings"
	"testing"

	"github.com/example/inkwell/internal/ports/secondary"
)

func TestBuildPromptIncludesMessage(t *testing.T) {
	msg := &secondary.Message{
		ID:      "abc123",
		Subject: "Budget review",
		From:    "dana@example.com",
		Date:    "2026-08-30T10:00:00Z",
		Body:    "Please send the Q3 numbers before Thursday.",
	}

	prompt := BuildPrompt(msg)

	for _, want := range []string{
		"Subject: Budget review",
		"From: dana@example.com",
		"Please send the Q3 numbers",
		"STRICT JSON",
		"mission_id",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildPromptTruncatesBody(t *testing.T) {
	msg := &secondary.Message{
		Subject: "long",
		Body:    strings.Repeat("a", maxBodyChars+500),
	}

	prompt := BuildPrompt(msg)
	if strings.Contains(prompt, strings.Repeat("a", maxBodyChars+1)) {
		t.Error("body should be truncated to the configured bound")
	}
	if !strings.Contains(prompt, strings.Repeat("a", maxBodyChars)) {
		t.Error("truncation should keep the leading bound of the body")
	}
}
