package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/example/inkwell/internal/db"
	"github.com/example/inkwell/internal/ports/secondary"
)

// testDB opens an in-memory database with the real schema applied.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func testMission(id string) *secondary.MissionRecord {
	return &secondary.MissionRecord{
		ID:             id,
		MessageID:      "m-" + id,
		Title:          "Budget review",
		Urgency:        "HIGH",
		Deadline:       "2026-09-01",
		ActionRequired: "Send the Q3 numbers to finance",
		Context:        "Board meeting Thursday",
		PeopleInvolved: []string{"Dana", "Lee"},
		Status:         "NEW",
		RawDecision:    `{"has_task": true}`,
	}
}

// ============================================================================
// MissionRepository
// ============================================================================

func TestMissionCreateAndGet(t *testing.T) {
	repo := NewMissionRepository(testDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testMission("MI-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "MI-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Title != "Budget review" || got.Urgency != "HIGH" {
		t.Errorf("round trip lost fields: %+v", got)
	}
	if len(got.PeopleInvolved) != 2 || got.PeopleInvolved[0] != "Dana" {
		t.Errorf("people involved not preserved: %v", got.PeopleInvolved)
	}
	if got.RawDecision == "" {
		t.Error("raw decision not preserved")
	}
}

func TestMissionCreateDuplicate(t *testing.T) {
	repo := NewMissionRepository(testDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testMission("MI-1")); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}

	err := repo.Create(ctx, testMission("MI-1"))
	if !errors.Is(err, secondary.ErrDuplicateMission) {
		t.Errorf("expected ErrDuplicateMission, got %v", err)
	}
}

func TestMissionCreateRequiresIDAndStatus(t *testing.T) {
	repo := NewMissionRepository(testDB(t))
	ctx := context.Background()

	rec := testMission("MI-1")
	rec.ID = ""
	if err := repo.Create(ctx, rec); err == nil {
		t.Error("missing ID should be rejected")
	}

	rec = testMission("MI-2")
	rec.Status = ""
	if err := repo.Create(ctx, rec); err == nil {
		t.Error("missing status should be rejected")
	}
}

func TestMissionListFilter(t *testing.T) {
	repo := NewMissionRepository(testDB(t))
	ctx := context.Background()

	for _, id := range []string{"MI-1", "MI-2", "MI-3"} {
		if err := repo.Create(ctx, testMission(id)); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	if err := repo.UpdateStatus(ctx, "MI-2", "COMPLETED", ""); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	newOnes, err := repo.List(ctx, secondary.MissionFilters{Status: "NEW"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(newOnes) != 2 {
		t.Errorf("expected 2 NEW missions, got %d", len(newOnes))
	}

	limited, err := repo.List(ctx, secondary.MissionFilters{Limit: 1})
	if err != nil {
		t.Fatalf("List with limit failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("limit not applied, got %d", len(limited))
	}
}

func TestMissionUpdateStatus(t *testing.T) {
	repo := NewMissionRepository(testDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, testMission("MI-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if err := repo.UpdateStatus(ctx, "MI-1", "COMPLETED", "TASK-42"); err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}

	got, err := repo.GetByID(ctx, "MI-1")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if got.Status != "COMPLETED" {
		t.Errorf("status not updated: %s", got.Status)
	}
	if got.CompletedAt == nil {
		t.Error("completion time not stamped")
	}
	if got.TaskRef != "TASK-42" {
		t.Errorf("task ref not stored: %s", got.TaskRef)
	}

	// Empty taskRef keeps the stored reference.
	if err := repo.UpdateStatus(ctx, "MI-1", "CANCELLED", ""); err != nil {
		t.Fatalf("second UpdateStatus failed: %v", err)
	}
	got, _ = repo.GetByID(ctx, "MI-1")
	if got.TaskRef != "TASK-42" {
		t.Errorf("empty taskRef overwrote stored reference: %q", got.TaskRef)
	}
}

func TestMissionUpdateStatusMissing(t *testing.T) {
	repo := NewMissionRepository(testDB(t))

	if err := repo.UpdateStatus(context.Background(), "MI-missing", "COMPLETED", ""); err == nil {
		t.Error("updating a missing mission should fail")
	}
}

func TestMissionStats(t *testing.T) {
	conn := testDB(t)
	missions := NewMissionRepository(conn)
	processed := NewProcessedRepository(conn)
	ctx := context.Background()

	if err := missions.Create(ctx, testMission("MI-1")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	low := testMission("MI-2")
	low.Urgency = "LOW"
	if err := missions.Create(ctx, low); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	for _, rec := range []*secondary.ProcessedRecord{
		{MessageID: "m-1", Subject: "a", Sender: "x", HasTask: true, MissionID: "MI-1"},
		{MessageID: "m-2", Subject: "b", Sender: "y"},
	} {
		if err := processed.MarkProcessed(ctx, rec); err != nil {
			t.Fatalf("MarkProcessed failed: %v", err)
		}
	}

	stats, err := missions.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.ByStatus["NEW"] != 2 {
		t.Errorf("expected 2 NEW, got %d", stats.ByStatus["NEW"])
	}
	if stats.ByUrgency["HIGH"] != 1 || stats.ByUrgency["LOW"] != 1 {
		t.Errorf("urgency counts wrong: %v", stats.ByUrgency)
	}
	if stats.Last24h != 2 {
		t.Errorf("expected 2 recent missions, got %d", stats.Last24h)
	}
	if stats.TotalProcessed != 2 || stats.WithTask != 1 {
		t.Errorf("processed counts wrong: total=%d withTask=%d", stats.TotalProcessed, stats.WithTask)
	}
}

func TestMissionStatsEmpty(t *testing.T) {
	repo := NewMissionRepository(testDB(t))

	stats, err := repo.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats on empty database failed: %v", err)
	}
	if stats.TotalProcessed != 0 || stats.WithTask != 0 {
		t.Errorf("expected zero counts, got %+v", stats)
	}
}

// ============================================================================
// ProcessedRepository
// ============================================================================

func TestProcessedLedgerIdempotent(t *testing.T) {
	repo := NewProcessedRepository(testDB(t))
	ctx := context.Background()

	rec := &secondary.ProcessedRecord{
		MessageID:  "m-1",
		Subject:    "Budget review",
		Sender:     "dana@example.com",
		ReceivedAt: "2026-08-30T10:00:00Z",
		HasTask:    true,
		MissionID:  "MI-1",
	}

	if err := repo.MarkProcessed(ctx, rec); err != nil {
		t.Fatalf("MarkProcessed failed: %v", err)
	}
	// Re-marking the same message overwrites in place.
	if err := repo.MarkProcessed(ctx, rec); err != nil {
		t.Fatalf("second MarkProcessed failed: %v", err)
	}

	ok, err := repo.IsProcessed(ctx, "m-1")
	if err != nil {
		t.Fatalf("IsProcessed failed: %v", err)
	}
	if !ok {
		t.Error("message should be processed")
	}

	got, err := repo.Get(ctx, "m-1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil || got.MissionID != "MI-1" || !got.HasTask {
		t.Errorf("record not preserved: %+v", got)
	}
}

func TestProcessedLedgerAbsent(t *testing.T) {
	repo := NewProcessedRepository(testDB(t))
	ctx := context.Background()

	ok, err := repo.IsProcessed(ctx, "m-missing")
	if err != nil {
		t.Fatalf("IsProcessed failed: %v", err)
	}
	if ok {
		t.Error("unseen message reported as processed")
	}

	got, err := repo.Get(ctx, "m-missing")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for absent record, got %+v", got)
	}
}

// ============================================================================
// ConfigRepository
// ============================================================================

func TestConfigStoreRoundTrip(t *testing.T) {
	repo := NewConfigRepository(testDB(t))
	ctx := context.Background()

	val, err := repo.Get(ctx, "last_mail_check")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "" {
		t.Errorf("unset key should be empty, got %q", val)
	}

	if err := repo.Set(ctx, "last_mail_check", "2026-08-30T10:00:00Z"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(ctx, "last_mail_check", "2026-08-30T11:00:00Z"); err != nil {
		t.Fatalf("second Set failed: %v", err)
	}

	val, err = repo.Get(ctx, "last_mail_check")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if val != "2026-08-30T11:00:00Z" {
		t.Errorf("Set did not overwrite: %q", val)
	}
}

// ============================================================================
// PrintJobRepository
// ============================================================================

func TestPrintJobLifecycle(t *testing.T) {
	conn := testDB(t)
	repo := NewPrintJobRepository(conn)
	ctx := context.Background()

	id, err := repo.Record(ctx, "MI-1", "content")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if id == "" {
		t.Fatal("Record returned empty ID")
	}

	if err := repo.Finish(ctx, id, secondary.PrintCompleted, ""); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	var status string
	var printedAt sql.NullTime
	err = conn.QueryRow(`SELECT status, printed_at FROM print_jobs WHERE id = ?`, id).Scan(&status, &printedAt)
	if err != nil {
		t.Fatalf("failed to read job back: %v", err)
	}
	if status != secondary.PrintCompleted {
		t.Errorf("status not updated: %s", status)
	}
	if !printedAt.Valid {
		t.Error("printed_at not stamped")
	}
}

func TestPrintJobFailure(t *testing.T) {
	conn := testDB(t)
	repo := NewPrintJobRepository(conn)
	ctx := context.Background()

	id, err := repo.Record(ctx, "", "content")
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := repo.Finish(ctx, id, secondary.PrintFailed, "device or resource busy"); err != nil {
		t.Fatalf("Finish failed: %v", err)
	}

	var status string
	var errMsg sql.NullString
	err = conn.QueryRow(`SELECT status, error FROM print_jobs WHERE id = ?`, id).Scan(&status, &errMsg)
	if err != nil {
		t.Fatalf("failed to read job back: %v", err)
	}
	if status != secondary.PrintFailed || errMsg.String != "device or resource busy" {
		t.Errorf("failure not recorded: %s %q", status, errMsg.String)
	}
}
