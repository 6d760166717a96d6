// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems: the SQLite store, the mailbox, the language model, the
// printer transports, and local audio.
package secondary

import (
	"context"
	"errors"
	"time"
)

// ErrDuplicateMission is returned by Create when a mission with the same ID
// already exists. The classifier derives mission IDs from the message ID, so
// a collision signals reprocessing, not corruption; callers log and skip.
var ErrDuplicateMission = errors.New("mission already exists")

// MissionRecord represents a mission as stored in persistence.
type MissionRecord struct {
	ID             string // mission identifier from the classifier, globally unique
	MessageID      string
	Title          string
	Urgency        string
	Deadline       string
	ActionRequired string
	Context        string
	PeopleInvolved []string
	Status         string
	TaskRef        string // optional external task-tracker reference
	CreatedAt      time.Time
	CompletedAt    *time.Time
	RawDecision    string // full classifier JSON, kept for reprint
}

// MissionFilters narrows List results.
type MissionFilters struct {
	Status string
	Limit  int
}

// MissionStats aggregates counts for the status command.
type MissionStats struct {
	ByStatus       map[string]int
	ByUrgency      map[string]int
	Last24h        int
	TotalProcessed int
	WithTask       int
}

// MissionRepository defines the secondary port for mission persistence.
type MissionRepository interface {
	// Create persists a new mission. The record must arrive with ID and
	// Status pre-populated by the service layer. A duplicate ID fails
	// with ErrDuplicateMission.
	Create(ctx context.Context, rec *MissionRecord) error

	// GetByID retrieves a mission by its ID.
	GetByID(ctx context.Context, id string) (*MissionRecord, error)

	// List retrieves missions matching the given filters, newest first.
	List(ctx context.Context, filters MissionFilters) ([]*MissionRecord, error)

	// UpdateStatus sets the mission status. COMPLETED also stamps the
	// completion time. taskRef is merged: an empty value keeps whatever
	// reference is already stored.
	UpdateStatus(ctx context.Context, id, status, taskRef string) error

	// Stats returns aggregate counts across missions and the processed
	// ledger.
	Stats(ctx context.Context) (*MissionStats, error)
}

// ProcessedRecord is one row of the dedup/audit ledger.
type ProcessedRecord struct {
	MessageID   string
	Subject     string
	Sender      string
	ReceivedAt  string
	ProcessedAt time.Time
	HasTask     bool
	MissionID   string
}

// ProcessedLedger defines the secondary port for the dedup ledger.
type ProcessedLedger interface {
	// MarkProcessed upserts the record for a message. Re-processing the
	// same message ID overwrites in place, never duplicates.
	MarkProcessed(ctx context.Context, rec *ProcessedRecord) error

	// IsProcessed reports whether a message ID already has a record.
	IsProcessed(ctx context.Context, messageID string) (bool, error)

	// Get retrieves the record for a message ID, or nil if absent.
	Get(ctx context.Context, messageID string) (*ProcessedRecord, error)
}

// ConfigStore holds scalar system state, notably the check watermark.
type ConfigStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// PrintJobRecord is one row of the audit-only print ledger.
type PrintJobRecord struct {
	ID        string
	MissionID string
	Content   string
	Status    string
	CreatedAt time.Time
	PrintedAt *time.Time
	Error     string
}

// Print job statuses.
const (
	PrintPending   = "PENDING"
	PrintPrinting  = "PRINTING"
	PrintCompleted = "COMPLETED"
	PrintFailed    = "FAILED"
)

// PrintJobLedger records content submitted for printing. Nothing in the
// delivery path reads it back; it exists as an audit trail.
type PrintJobLedger interface {
	// Record inserts a PENDING job and returns its ID.
	Record(ctx context.Context, missionID, content string) (string, error)

	// Finish marks a job COMPLETED or FAILED.
	Finish(ctx context.Context, id, status, errMsg string) error
}
