package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/example/inkwell/internal/core/classify"
	"github.com/example/inkwell/internal/core/mission"
	"github.com/example/inkwell/internal/ports/primary"
	"github.com/example/inkwell/internal/ports/secondary"
)

// watermarkKey is the system_config key holding the last check timestamp.
const watermarkKey = "last_mail_check"

// interMessageDelay spaces classification calls to respect upstream rate
// limits.
const interMessageDelay = 1 * time.Second

// firstRunLookback bounds the initial fetch when no watermark is stored.
const firstRunLookback = 24 * time.Hour

// MonitorServiceImpl implements primary.MonitorService: one check cycle is
// fetch -> dedup -> classify -> persist/deliver -> mark processed -> advance
// watermark, all sequential.
type MonitorServiceImpl struct {
	source     secondary.MailSource
	classifier secondary.Classifier
	missions   secondary.MissionRepository
	processed  secondary.ProcessedLedger
	state      secondary.ConfigStore
	delivery   *DeliveryEngine
	logger     *zap.Logger

	intervalMinutes int
	maxPerCycle     int

	// injected for tests
	now   func() time.Time
	sleep func(time.Duration)
}

// NewMonitorService creates the orchestrator with injected collaborators.
func NewMonitorService(
	source secondary.MailSource,
	classifier secondary.Classifier,
	missions secondary.MissionRepository,
	processed secondary.ProcessedLedger,
	state secondary.ConfigStore,
	delivery *DeliveryEngine,
	intervalMinutes, maxPerCycle int,
	logger *zap.Logger,
) *MonitorServiceImpl {
	if maxPerCycle <= 0 {
		maxPerCycle = 20
	}
	return &MonitorServiceImpl{
		source:          source,
		classifier:      classifier,
		missions:        missions,
		processed:       processed,
		state:           state,
		delivery:        delivery,
		logger:          logger,
		intervalMinutes: intervalMinutes,
		maxPerCycle:     maxPerCycle,
		now:             time.Now,
		sleep:           time.Sleep,
	}
}

// RunCycle runs one check cycle. A source outage aborts before anything is
// attempted and leaves the watermark untouched. Once the cycle has started,
// the watermark advances to "now" even on partial failure: forward progress
// over completeness, so a prolonged classifier outage can skip the outage
// window's messages. That trade-off is deliberate and covered by tests.
func (m *MonitorServiceImpl) RunCycle(ctx context.Context) (*primary.CycleResult, error) {
	since := m.watermark(ctx)

	refs, err := m.source.ListSince(ctx, since, m.maxPerCycle)
	if err != nil {
		return nil, fmt.Errorf("cycle aborted: %w", err)
	}

	result := &primary.CycleResult{Fetched: len(refs)}
	m.logger.Info("check cycle started",
		zap.Time("since", since),
		zap.Int("candidates", len(refs)))

	for i, ref := range refs {
		if ctx.Err() != nil {
			break
		}

		already, err := m.processed.IsProcessed(ctx, ref.ID)
		if err != nil {
			m.logger.Error("ledger check failed", zap.String("message_id", ref.ID), zap.Error(err))
			result.Failures++
			continue
		}
		if already {
			result.Skipped++
			continue
		}

		if i > 0 {
			m.sleep(interMessageDelay)
		}

		msg, err := m.source.Get(ctx, ref.ID)
		if err != nil {
			m.logger.Error("failed to fetch message", zap.String("message_id", ref.ID), zap.Error(err))
			result.Failures++
			continue
		}

		abort := m.processMessage(ctx, msg, result)
		if abort {
			break
		}
	}

	// Advance the watermark even after partial failure.
	if err := m.state.Set(ctx, watermarkKey, m.now().UTC().Format(time.RFC3339)); err != nil {
		m.logger.Error("failed to advance watermark", zap.Error(err))
	}

	m.logger.Info("check cycle complete",
		zap.Int("processed", result.Processed),
		zap.Int("missions", result.Missions),
		zap.Int("tickets", result.Tickets),
		zap.Int("skipped", result.Skipped),
		zap.Int("failures", result.Failures))

	return result, nil
}

// processMessage classifies one message and handles the outcome. Returns
// true when the cycle should abort (classifier outage).
func (m *MonitorServiceImpl) processMessage(ctx context.Context, msg *secondary.Message, result *primary.CycleResult) bool {
	decision, err := m.classifier.Classify(ctx, msg)
	switch {
	case err == nil:
	case errors.Is(err, secondary.ErrClassifierUnavailable):
		// Outage: abort the rest of the cycle. The message stays
		// unprocessed, but the watermark still advances afterwards.
		m.logger.Error("classifier unavailable, aborting cycle", zap.Error(err))
		result.Failures++
		return true
	case errors.Is(err, classify.ErrMalformedDecision):
		m.logger.Warn("unparseable classification, marking processed",
			zap.String("message_id", msg.ID), zap.Error(err))
		m.markProcessed(ctx, msg, false, "")
		result.Processed++
		result.Failures++
		return false
	default:
		m.logger.Error("classification failed, marking processed",
			zap.String("message_id", msg.ID), zap.Error(err))
		m.markProcessed(ctx, msg, false, "")
		result.Processed++
		result.Failures++
		return false
	}

	switch {
	case decision.IsMission():
		m.handleMission(ctx, msg, decision, result)
	case decision.IsMessage():
		m.handleTicket(ctx, msg, decision, result)
	default:
		m.logger.Info("no actionable content",
			zap.String("message_id", msg.ID),
			zap.Float64("confidence", decision.Confidence))
		m.markProcessed(ctx, msg, false, "")
		result.Processed++
	}
	return false
}

func (m *MonitorServiceImpl) handleMission(ctx context.Context, msg *secondary.Message, decision *classify.Decision, result *primary.CycleResult) {
	b := decision.Briefing
	rec := &secondary.MissionRecord{
		ID:             b.MissionID,
		MessageID:      msg.ID,
		Title:          b.Title,
		Urgency:        string(b.Urgency),
		Deadline:       b.Deadline,
		ActionRequired: b.ActionRequired,
		Context:        b.Context,
		PeopleInvolved: b.PeopleInvolved,
		Status:         string(mission.InitialStatus()),
		RawDecision:    decision.Raw,
	}

	err := m.missions.Create(ctx, rec)
	if err != nil {
		if errors.Is(err, secondary.ErrDuplicateMission) {
			// The classifier derives mission IDs from the message ID,
			// so a duplicate means this message was already handled.
			m.logger.Warn("mission already exists, skipping print",
				zap.String("mission_id", b.MissionID))
			m.markProcessed(ctx, msg, true, b.MissionID)
			result.Processed++
			return
		}
		m.logger.Error("failed to create mission",
			zap.String("mission_id", b.MissionID), zap.Error(err))
		m.markProcessed(ctx, msg, false, "")
		result.Processed++
		result.Failures++
		return
	}

	m.logger.Info("mission created",
		zap.String("mission_id", b.MissionID),
		zap.String("urgency", string(b.Urgency)),
		zap.String("title", b.Title))

	if !m.delivery.PrintMission(ctx, b) {
		m.logger.Warn("mission print failed, mission persisted anyway",
			zap.String("mission_id", b.MissionID))
	}

	m.markProcessed(ctx, msg, true, b.MissionID)
	result.Processed++
	result.Missions++
}

func (m *MonitorServiceImpl) handleTicket(ctx context.Context, msg *secondary.Message, decision *classify.Decision, result *primary.CycleResult) {
	r := decision.Receipt
	if r == nil {
		r = &classify.Receipt{Sender: msg.From, Message: msg.Subject}
	}

	if !m.delivery.PrintReceipt(ctx, r) {
		m.logger.Warn("ticket print failed", zap.String("message_id", msg.ID))
	}

	m.markProcessed(ctx, msg, false, "")
	result.Processed++
	result.Tickets++
}

// markProcessed writes the ledger row; a failure here is logged but never
// stops the cycle.
func (m *MonitorServiceImpl) markProcessed(ctx context.Context, msg *secondary.Message, hasTask bool, missionID string) {
	rec := &secondary.ProcessedRecord{
		MessageID:  msg.ID,
		Subject:    msg.Subject,
		Sender:     msg.From,
		ReceivedAt: msg.Date,
		HasTask:    hasTask,
		MissionID:  missionID,
	}
	if err := m.processed.MarkProcessed(ctx, rec); err != nil {
		m.logger.Error("failed to mark message processed",
			zap.String("message_id", msg.ID), zap.Error(err))
	}
}

// watermark loads the stored check watermark, defaulting to 24 hours ago on
// first run.
func (m *MonitorServiceImpl) watermark(ctx context.Context) time.Time {
	value, err := m.state.Get(ctx, watermarkKey)
	if err != nil {
		m.logger.Warn("failed to load watermark", zap.Error(err))
	}
	if value != "" {
		if t, err := time.Parse(time.RFC3339, value); err == nil {
			return t
		}
		m.logger.Warn("unparseable watermark, using lookback", zap.String("value", value))
	}
	return m.now().UTC().Add(-firstRunLookback)
}

// Run loops RunCycle on the given interval until ctx is cancelled. A cycle
// abort (source outage) is logged and the loop keeps going.
func (m *MonitorServiceImpl) Run(ctx context.Context, interval time.Duration) error {
	m.logger.Info("monitoring started", zap.Duration("interval", interval))

	for {
		if _, err := m.RunCycle(ctx); err != nil {
			m.logger.Error("check cycle failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			m.logger.Info("monitoring stopped")
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// Status returns the aggregate pipeline status for the status command.
func (m *MonitorServiceImpl) Status(ctx context.Context) (*primary.StatusReport, error) {
	stats, err := m.missions.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load stats: %w", err)
	}

	return &primary.StatusReport{
		Watermark:       m.watermark(ctx),
		IntervalMinutes: m.intervalMinutes,
		Printer:         m.delivery.Describe(),
		Stats:           stats,
	}, nil
}
