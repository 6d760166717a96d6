package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/inkwell/internal/ports/secondary"
)

// PrintJobRepository implements secondary.PrintJobLedger with SQLite.
// Audit-only: the delivery path writes rows and nothing reads them back.
type PrintJobRepository struct {
	db *sql.DB
}

// NewPrintJobRepository creates a new SQLite print-job ledger.
func NewPrintJobRepository(db *sql.DB) *PrintJobRepository {
	return &PrintJobRepository{db: db}
}

// Record inserts a PENDING job and returns its ID.
func (r *PrintJobRepository) Record(ctx context.Context, missionID, content string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO print_jobs (id, mission_id, content, status) VALUES (?, ?, ?, ?)`,
		id, missionID, content, secondary.PrintPending,
	)
	if err != nil {
		return "", fmt.Errorf("failed to record print job: %w", err)
	}
	return id, nil
}

// Finish marks a job COMPLETED or FAILED.
func (r *PrintJobRepository) Finish(ctx context.Context, id, status, errMsg string) error {
	var e sql.NullString
	if errMsg != "" {
		e = sql.NullString{String: errMsg, Valid: true}
	}

	var err error
	if status == secondary.PrintCompleted {
		_, err = r.db.ExecContext(ctx,
			`UPDATE print_jobs SET status = ?, printed_at = ? WHERE id = ?`,
			status, time.Now().UTC(), id)
	} else {
		_, err = r.db.ExecContext(ctx,
			`UPDATE print_jobs SET status = ?, error = ? WHERE id = ?`,
			status, e, id)
	}
	if err != nil {
		return fmt.Errorf("failed to finish print job: %w", err)
	}
	return nil
}
