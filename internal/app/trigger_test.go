package app

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/example/inkwell/internal/config"
	"github.com/example/inkwell/internal/ports/secondary"
)

// mockPlayer implements secondary.AudioPlayer for testing.
type mockPlayer struct {
	mu    sync.Mutex
	plays int
}

func (m *mockPlayer) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.plays++
	return nil
}

func (m *mockPlayer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.plays
}

// immediate returns an already-fired timer channel, collapsing spawn delays.
func immediate(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

// never returns a timer channel that never fires.
func never(time.Duration) <-chan time.Time {
	return make(chan time.Time)
}

func testController(cfg config.TriggerConfig, audio config.AudioConfig, player secondary.AudioPlayer) *TriggerController {
	c := NewTriggerController(cfg, audio, player, zap.NewNop())
	c.after = immediate
	c.sleep = func(time.Duration) {}
	return c
}

func TestFireDebounce(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := testController(config.TriggerConfig{CooldownSeconds: 5}, config.AudioConfig{}, nil)
	defer c.Close()

	now := time.Date(2026, 8, 30, 14, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	if !c.Fire() {
		t.Fatal("first fire should pass")
	}
	if c.Fire() {
		t.Error("second fire inside the cooldown should be suppressed")
	}

	now = now.Add(6 * time.Second)
	if !c.Fire() {
		t.Error("fire after the cooldown should pass")
	}
}

func TestFireZeroCooldownNeverSuppresses(t *testing.T) {
	defer goleak.VerifyNone(t)

	c := testController(config.TriggerConfig{}, config.AudioConfig{}, nil)
	defer c.Close()

	if !c.Fire() || !c.Fire() {
		t.Error("zero cooldown should never suppress")
	}
}

func TestFirePostsWebhookPair(t *testing.T) {
	defer goleak.VerifyNone(t)

	var mu sync.Mutex
	var events []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]string
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Errorf("bad webhook payload: %v", err)
		}
		if payload["source"] != "pipeline" {
			t.Errorf("wrong source: %q", payload["source"])
		}
		mu.Lock()
		events = append(events, payload["event"])
		mu.Unlock()
	}))
	defer server.Close()

	c := testController(config.TriggerConfig{
		Enabled:             true,
		WebhookURL:          server.URL + "/start",
		StopWebhookURL:      server.URL + "/stop",
		LeadSeconds:         3,
		PlayDurationSeconds: 28,
	}, config.AudioConfig{}, nil)

	if !c.Fire() {
		t.Fatal("fire should pass")
	}
	c.Close() // waits for both posts

	mu.Lock()
	defer mu.Unlock()
	if len(events) != 2 {
		t.Fatalf("expected 2 webhook posts, got %d", len(events))
	}
	seen := map[string]bool{}
	for _, e := range events {
		seen[e] = true
	}
	if !seen["mission_print"] || !seen["mission_stop"] {
		t.Errorf("expected mission_print and mission_stop, got %v", events)
	}
}

func TestPostWebhookRetriesOnce(t *testing.T) {
	var mu sync.Mutex
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		first := requests == 1
		mu.Unlock()
		if first {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	c := testController(config.TriggerConfig{}, config.AudioConfig{}, nil)
	defer c.Close()

	if err := c.postWebhook(server.URL, "mission_print"); err != nil {
		t.Errorf("retry should recover from one failure: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if requests != 2 {
		t.Errorf("expected 2 requests, got %d", requests)
	}
}

func TestPostWebhookFailsAfterRetry(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := testController(config.TriggerConfig{}, config.AudioConfig{}, nil)
	defer c.Close()

	if err := c.postWebhook(server.URL, "mission_print"); err == nil {
		t.Error("persistent failure should surface after the retry")
	}
}

func TestFirePlaysAudio(t *testing.T) {
	defer goleak.VerifyNone(t)

	player := &mockPlayer{}
	c := testController(config.TriggerConfig{}, config.AudioConfig{Enabled: true, LeadSeconds: 1}, player)

	if !c.Fire() {
		t.Fatal("fire should pass")
	}
	c.Close()

	if player.count() != 1 {
		t.Errorf("audio cue should play once, played %d times", player.count())
	}
}

func TestCloseCancelsPendingActions(t *testing.T) {
	defer goleak.VerifyNone(t)

	player := &mockPlayer{}
	c := testController(config.TriggerConfig{}, config.AudioConfig{Enabled: true, LeadSeconds: 1}, player)
	c.after = never

	if !c.Fire() {
		t.Fatal("fire should pass")
	}
	c.Close()

	if player.count() != 0 {
		t.Error("pending action should be cancelled by Close")
	}
	if c.Fire() {
		t.Error("fire after Close should be rejected")
	}
}
