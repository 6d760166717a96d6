package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/example/inkwell/internal/core/classify"
	"github.com/example/inkwell/internal/core/mission"
	"github.com/example/inkwell/internal/ports/secondary"
)

// MissionServiceImpl implements primary.MissionService.
type MissionServiceImpl struct {
	missions secondary.MissionRepository
	delivery *DeliveryEngine
	logger   *zap.Logger
}

// NewMissionService creates a MissionService with injected dependencies.
func NewMissionService(missions secondary.MissionRepository, delivery *DeliveryEngine, logger *zap.Logger) *MissionServiceImpl {
	return &MissionServiceImpl{missions: missions, delivery: delivery, logger: logger}
}

// List returns missions, newest first, optionally filtered by status.
func (s *MissionServiceImpl) List(ctx context.Context, status string, limit int) ([]*secondary.MissionRecord, error) {
	if status != "" && !mission.ValidStatus(mission.Status(status)) {
		return nil, fmt.Errorf("unknown status %q", status)
	}
	return s.missions.List(ctx, secondary.MissionFilters{Status: status, Limit: limit})
}

// Get returns one mission by ID.
func (s *MissionServiceImpl) Get(ctx context.Context, id string) (*secondary.MissionRecord, error) {
	return s.missions.GetByID(ctx, id)
}

// Complete marks a mission COMPLETED.
func (s *MissionServiceImpl) Complete(ctx context.Context, id, taskRef string) error {
	return s.transition(ctx, id, mission.StatusCompleted, taskRef)
}

// Cancel marks a mission CANCELLED.
func (s *MissionServiceImpl) Cancel(ctx context.Context, id string) error {
	return s.transition(ctx, id, mission.StatusCancelled, "")
}

func (s *MissionServiceImpl) transition(ctx context.Context, id string, to mission.Status, taskRef string) error {
	rec, err := s.missions.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := mission.CanTransition(mission.Status(rec.Status), to); err != nil {
		return fmt.Errorf("cannot move mission %s to %s: %w", id, to, err)
	}
	if err := s.missions.UpdateStatus(ctx, id, string(to), taskRef); err != nil {
		return err
	}
	s.logger.Info("mission status updated",
		zap.String("mission_id", id),
		zap.String("status", string(to)))
	return nil
}

// Reprint re-renders a stored mission from its raw decision payload and
// sends it to the printer.
func (s *MissionServiceImpl) Reprint(ctx context.Context, id string) (bool, error) {
	rec, err := s.missions.GetByID(ctx, id)
	if err != nil {
		return false, err
	}
	if rec.RawDecision == "" {
		return false, fmt.Errorf("mission %s has no stored decision to reprint", id)
	}

	decision, err := classify.ParseDecision(rec.RawDecision)
	if err != nil {
		return false, fmt.Errorf("stored decision for %s unusable: %w", id, err)
	}
	if decision.Briefing == nil {
		return false, fmt.Errorf("stored decision for %s has no briefing", id)
	}

	return s.delivery.PrintMission(ctx, decision.Briefing), nil
}
