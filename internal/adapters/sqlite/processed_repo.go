package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/inkwell/internal/ports/secondary"
)

// ProcessedRepository implements secondary.ProcessedLedger with SQLite.
type ProcessedRepository struct {
	db *sql.DB
}

// NewProcessedRepository creates a new SQLite processed-message ledger.
func NewProcessedRepository(db *sql.DB) *ProcessedRepository {
	return &ProcessedRepository{db: db}
}

// MarkProcessed upserts the ledger row for a message. INSERT OR REPLACE
// keeps at most one record per message ID.
func (r *ProcessedRepository) MarkProcessed(ctx context.Context, rec *secondary.ProcessedRecord) error {
	var missionID sql.NullString
	if rec.MissionID != "" {
		missionID = sql.NullString{String: rec.MissionID, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO processed_messages (message_id, subject, sender, received_at, processed_at, has_task, mission_id)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.MessageID, rec.Subject, rec.Sender, rec.ReceivedAt, time.Now().UTC(), rec.HasTask, missionID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark message processed: %w", err)
	}
	return nil
}

// IsProcessed reports whether a message ID already has a ledger row.
func (r *ProcessedRepository) IsProcessed(ctx context.Context, messageID string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM processed_messages WHERE message_id = ?`, messageID,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check processed ledger: %w", err)
	}
	return count > 0, nil
}

// Get retrieves the ledger row for a message ID, or nil when absent.
func (r *ProcessedRepository) Get(ctx context.Context, messageID string) (*secondary.ProcessedRecord, error) {
	var (
		rec         secondary.ProcessedRecord
		receivedAt  sql.NullString
		missionID   sql.NullString
		processedAt time.Time
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT message_id, subject, sender, received_at, processed_at, has_task, mission_id
		 FROM processed_messages WHERE message_id = ?`, messageID,
	).Scan(&rec.MessageID, &rec.Subject, &rec.Sender, &receivedAt, &processedAt, &rec.HasTask, &missionID)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get processed record: %w", err)
	}

	rec.ReceivedAt = receivedAt.String
	rec.ProcessedAt = processedAt
	rec.MissionID = missionID.String
	return &rec, nil
}
