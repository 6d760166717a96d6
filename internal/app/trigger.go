// Package app contains the application layer: the monitor orchestrator, the
// mission service, the delivery engine, and the side-effect trigger.
package app

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/example/inkwell/internal/config"
	"github.com/example/inkwell/internal/ports/secondary"
)

// Trigger is fired by the delivery engine when a print attempt starts.
type Trigger interface {
	// Fire schedules the webhook pair and the audio cue. Returns false
	// when the debounce window suppressed the firing.
	Fire() bool
}

// webhookTimeout bounds each outbound POST.
const webhookTimeout = 2 * time.Second

// webhookRetryWait is the pause before the single retry on a failed POST.
const webhookRetryWait = 1 * time.Second

// triggerResult is one background action outcome, drained by the logging
// goroutine. Failures are observable but never propagate.
type triggerResult struct {
	action string
	err    error
}

// TriggerController owns the debounce timestamp and the background tasks for
// webhook/audio side effects. All state is behind its mutex; nothing here is
// package-level.
type TriggerController struct {
	cfg    config.TriggerConfig
	audio  config.AudioConfig
	player secondary.AudioPlayer
	client *http.Client
	logger *zap.Logger

	// injected for tests
	now   func() time.Time
	after func(time.Duration) <-chan time.Time
	sleep func(time.Duration)

	mu        sync.Mutex
	lastFired time.Time
	closed    bool

	wg      sync.WaitGroup
	done    chan struct{}
	results chan triggerResult
	drained chan struct{}
}

// NewTriggerController creates the controller and starts its result drain.
func NewTriggerController(cfg config.TriggerConfig, audio config.AudioConfig, player secondary.AudioPlayer, logger *zap.Logger) *TriggerController {
	c := &TriggerController{
		cfg:     cfg,
		audio:   audio,
		player:  player,
		client:  &http.Client{Timeout: webhookTimeout},
		logger:  logger,
		now:     time.Now,
		after:   time.After,
		sleep:   time.Sleep,
		done:    make(chan struct{}),
		results: make(chan triggerResult, 16),
		drained: make(chan struct{}),
	}

	go func() {
		defer close(c.drained)
		for res := range c.results {
			if res.err != nil {
				c.logger.Warn("trigger action failed",
					zap.String("action", res.action),
					zap.Error(res.err))
			} else {
				c.logger.Info("trigger action completed",
					zap.String("action", res.action))
			}
		}
	}()

	return c
}

// Fire schedules the start webhook, the stop webhook, and the audio cue as
// detached tasks. A firing inside the cooldown window drops the whole
// triple; the debounce is process-wide, so two prints in quick succession
// yield a single cue.
func (c *TriggerController) Fire() bool {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	now := c.now()
	cooldown := time.Duration(c.cfg.CooldownSeconds * float64(time.Second))
	if cooldown > 0 && !c.lastFired.IsZero() && now.Sub(c.lastFired) < cooldown {
		c.mu.Unlock()
		c.logger.Debug("trigger suppressed by cooldown")
		return false
	}
	c.lastFired = now
	c.mu.Unlock()

	lead := time.Duration(c.cfg.LeadSeconds * float64(time.Second))
	play := time.Duration(c.cfg.PlayDurationSeconds * float64(time.Second))

	if c.cfg.Enabled && c.cfg.WebhookURL != "" {
		c.spawn("mission_print", lead, func() error {
			return c.postWebhook(c.cfg.WebhookURL, "mission_print")
		})
	}
	if c.cfg.Enabled && c.cfg.StopWebhookURL != "" {
		c.spawn("mission_stop", lead+play, func() error {
			return c.postWebhook(c.cfg.StopWebhookURL, "mission_stop")
		})
	}
	if c.audio.Enabled && c.player != nil {
		audioLead := time.Duration(c.audio.LeadSeconds * float64(time.Second))
		c.spawn("audio", audioLead, func() error {
			return c.player.Play()
		})
	}

	return true
}

// spawn runs fn on a tracked background task after a delay. The task aborts
// if the controller shuts down before the delay elapses.
func (c *TriggerController) spawn(action string, delay time.Duration, fn func() error) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		if delay > 0 {
			select {
			case <-c.after(delay):
			case <-c.done:
				return
			}
		}
		c.results <- triggerResult{action: action, err: fn()}
	}()
}

// postWebhook POSTs the event payload, retrying exactly once after a fixed
// pause on any failure or non-2xx response.
func (c *TriggerController) postWebhook(url, event string) error {
	body, _ := json.Marshal(map[string]string{
		"event":  event,
		"source": "pipeline",
	})

	send := func() error {
		resp, err := c.client.Post(url, "application/json", bytes.NewReader(body))
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("webhook returned %d", resp.StatusCode)
		}
		return nil
	}

	err := send()
	if err == nil {
		return nil
	}
	c.sleep(webhookRetryWait)
	if retryErr := send(); retryErr != nil {
		return fmt.Errorf("webhook %s failed after retry: %w", event, retryErr)
	}
	return nil
}

// Close stops accepting fires, cancels pending delays, and waits for
// in-flight actions and the result drain to finish.
func (c *TriggerController) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	c.mu.Unlock()

	close(c.done)
	c.wg.Wait()
	close(c.results)
	<-c.drained
}
