package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/inkwell/internal/core/classify"
	"github.com/example/inkwell/internal/core/mission"
	"github.com/example/inkwell/internal/core/ticket"
	"github.com/example/inkwell/internal/ports/secondary"
)

// Retry policy for transiently busy transports.
const (
	printAttempts  = 3
	printRetryWait = 2 * time.Second
)

// SelectTransport probes candidates in order and returns the first that
// opens. Later candidates are never probed; the winner is used for the rest
// of the process lifetime.
func SelectTransport(candidates []secondary.Transport, logger *zap.Logger) (secondary.Transport, error) {
	for _, t := range candidates {
		if err := t.Open(); err != nil {
			logger.Debug("transport probe failed",
				zap.String("kind", string(t.Kind())),
				zap.String("transport", t.Describe()),
				zap.Error(err))
			continue
		}
		logger.Info("transport selected", zap.String("transport", t.Describe()))
		return t, nil
	}
	return nil, fmt.Errorf("no printer transport available")
}

// DeliveryEngine formats content, writes it to the selected transport with
// busy-retry, and fires the side-effect trigger per print attempt. Print
// failure is reported, never raised: persistence is the guarantee, printing
// is best-effort.
type DeliveryEngine struct {
	transport secondary.Transport
	trigger   Trigger
	jobs      secondary.PrintJobLedger
	logger    *zap.Logger
	agentName string

	// injected for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewDeliveryEngine creates the engine around an already-selected transport.
func NewDeliveryEngine(transport secondary.Transport, trigger Trigger, jobs secondary.PrintJobLedger, agentName string, logger *zap.Logger) *DeliveryEngine {
	if agentName == "" {
		agentName = "Agent"
	}
	return &DeliveryEngine{
		transport: transport,
		trigger:   trigger,
		jobs:      jobs,
		logger:    logger,
		agentName: agentName,
		now:       time.Now,
		sleep:     time.Sleep,
	}
}

// Describe returns the selected transport's label for status output.
func (e *DeliveryEngine) Describe() string {
	return e.transport.Describe()
}

// Close releases the active transport handle.
func (e *DeliveryEngine) Close() error {
	return e.transport.Close()
}

// PrintMission renders and prints a mission briefing. Returns whether the
// write succeeded.
func (e *DeliveryEngine) PrintMission(ctx context.Context, b *mission.Briefing) bool {
	content := ticket.Briefing(b, e.agentName, e.now())
	return e.print(ctx, b.MissionID, content)
}

// PrintReceipt renders and prints a personal-message ticket.
func (e *DeliveryEngine) PrintReceipt(ctx context.Context, r *classify.Receipt) bool {
	content := ticket.Receipt(r, e.now())
	return e.print(ctx, "", content)
}

// print runs one delivery: trigger side effects, record the job, then write
// with busy-retry. The trigger fires before writing and regardless of the
// write outcome; cues mark "attempting to print", not "printed".
func (e *DeliveryEngine) print(ctx context.Context, missionID, content string) bool {
	if e.trigger != nil {
		e.trigger.Fire()
	}

	var jobID string
	if e.jobs != nil {
		id, err := e.jobs.Record(ctx, missionID, content)
		if err != nil {
			e.logger.Warn("failed to record print job", zap.Error(err))
		}
		jobID = id
	}

	err := e.writeWithRetry(content)
	if e.jobs != nil && jobID != "" {
		status := secondary.PrintCompleted
		errMsg := ""
		if err != nil {
			status = secondary.PrintFailed
			errMsg = err.Error()
		}
		if ferr := e.jobs.Finish(ctx, jobID, status, errMsg); ferr != nil {
			e.logger.Warn("failed to finish print job", zap.Error(ferr))
		}
	}

	if err != nil {
		e.logger.Error("print failed",
			zap.String("mission_id", missionID),
			zap.String("transport", e.transport.Describe()),
			zap.Error(err))
		return false
	}

	e.logger.Info("printed",
		zap.String("mission_id", missionID),
		zap.String("transport", e.transport.Describe()))
	return true
}

// writeWithRetry attempts the write, retrying only on transient busy errors,
// up to printAttempts total with a fixed pause between attempts. Any other
// error is terminal for the print.
func (e *DeliveryEngine) writeWithRetry(content string) error {
	var lastErr error
	for attempt := 1; attempt <= printAttempts; attempt++ {
		lastErr = e.writeOnce(content)
		if lastErr == nil {
			return nil
		}
		if !IsBusyError(lastErr) {
			return lastErr
		}
		if attempt < printAttempts {
			e.logger.Info("transport busy, retrying",
				zap.Int("attempt", attempt),
				zap.Duration("wait", printRetryWait))
			e.sleep(printRetryWait)
		}
	}
	return fmt.Errorf("transport still busy after %d attempts: %w", printAttempts, lastErr)
}

// writeOnce runs one full open/write/cut pass. Socket-backed transports are
// closed after each print so the device stays free; hardware handles persist
// for the process lifetime. A cut failure degrades to a dashed separator for
// printers without a cutter.
func (e *DeliveryEngine) writeOnce(content string) error {
	if err := e.transport.Open(); err != nil {
		return err
	}
	switch e.transport.Kind() {
	case secondary.KindBluetooth, secondary.KindNetwork:
		defer e.transport.Close()
	}

	if err := e.transport.Write(content + "\n\n\n"); err != nil {
		return err
	}

	if err := e.transport.Cut(); err != nil {
		e.logger.Debug("cut failed, writing separator", zap.Error(err))
		if werr := e.transport.Write(ticket.Separator()); werr != nil {
			return werr
		}
	}
	return nil
}

// IsBusyError reports whether the error text indicates the transport is
// transiently busy and worth retrying.
func IsBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "device or resource busy") || strings.Contains(msg, "errno 16")
}
