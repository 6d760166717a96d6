package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/example/inkwell/internal/ports/secondary"
)

func testMissionService(t *testing.T) (*MissionServiceImpl, *mockMissionRepo, *mockTransport) {
	t.Helper()
	repo := newMockMissionRepo()
	transport := &mockTransport{kind: secondary.KindFile}
	delivery := NewDeliveryEngine(transport, nil, nil, "Agent K", zap.NewNop())
	delivery.sleep = func(d time.Duration) {}
	return NewMissionService(repo, delivery, zap.NewNop()), repo, transport
}

func TestCompleteMission(t *testing.T) {
	svc, repo, _ := testMissionService(t)
	repo.missions["MI-1"] = &secondary.MissionRecord{ID: "MI-1", Status: "NEW"}

	if err := svc.Complete(context.Background(), "MI-1", "TASK-42"); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if repo.missions["MI-1"].Status != "COMPLETED" {
		t.Errorf("status not updated: %s", repo.missions["MI-1"].Status)
	}
	if repo.missions["MI-1"].TaskRef != "TASK-42" {
		t.Errorf("task ref not stored: %s", repo.missions["MI-1"].TaskRef)
	}
}

func TestCompleteTerminalMissionRejected(t *testing.T) {
	svc, repo, _ := testMissionService(t)
	repo.missions["MI-1"] = &secondary.MissionRecord{ID: "MI-1", Status: "CANCELLED"}

	if err := svc.Complete(context.Background(), "MI-1", ""); err == nil {
		t.Error("completing a cancelled mission should fail")
	}
	if repo.missions["MI-1"].Status != "CANCELLED" {
		t.Error("status must not change on a rejected transition")
	}
}

func TestCancelMission(t *testing.T) {
	svc, repo, _ := testMissionService(t)
	repo.missions["MI-1"] = &secondary.MissionRecord{ID: "MI-1", Status: "IN_PROGRESS"}

	if err := svc.Cancel(context.Background(), "MI-1"); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}
	if repo.missions["MI-1"].Status != "CANCELLED" {
		t.Errorf("status not updated: %s", repo.missions["MI-1"].Status)
	}
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _, _ := testMissionService(t)

	if _, err := svc.List(context.Background(), "ARCHIVED", 0); err == nil {
		t.Error("unknown status filter should be rejected")
	}
}

func TestReprint(t *testing.T) {
	svc, repo, transport := testMissionService(t)
	repo.missions["MI-A1B2C3D4"] = &secondary.MissionRecord{
		ID:     "MI-A1B2C3D4",
		Status: "NEW",
		RawDecision: `{
			"has_task": true,
			"mission_briefing": {
				"mission_id": "MI-A1B2C3D4",
				"title": "Budget review",
				"urgency": "HIGH",
				"action_required": "Send the Q3 numbers to finance",
				"context": "Board meeting"
			}
		}`,
	}

	ok, err := svc.Reprint(context.Background(), "MI-A1B2C3D4")
	if err != nil {
		t.Fatalf("Reprint failed: %v", err)
	}
	if !ok {
		t.Fatal("reprint should succeed")
	}
	if len(transport.writes) == 0 || !strings.Contains(transport.writes[0], "MI-A1B2C3D4") {
		t.Error("briefing not re-rendered from the stored decision")
	}
}

func TestReprintWithoutStoredDecision(t *testing.T) {
	svc, repo, _ := testMissionService(t)
	repo.missions["MI-1"] = &secondary.MissionRecord{ID: "MI-1", Status: "NEW"}

	if _, err := svc.Reprint(context.Background(), "MI-1"); err == nil {
		t.Error("reprint without a stored decision should fail")
	}
}
