// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/example/inkwell/internal/ports/secondary"
)

// MissionRepository implements secondary.MissionRepository with SQLite.
type MissionRepository struct {
	db *sql.DB
}

// NewMissionRepository creates a new SQLite mission repository.
func NewMissionRepository(db *sql.DB) *MissionRepository {
	return &MissionRepository{db: db}
}

// Create persists a new mission.
// The record must have ID and Status pre-populated by the service layer.
func (r *MissionRepository) Create(ctx context.Context, rec *secondary.MissionRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("mission ID must be pre-populated by service layer")
	}
	if rec.Status == "" {
		return fmt.Errorf("mission Status must be pre-populated by service layer")
	}

	people, err := json.Marshal(rec.PeopleInvolved)
	if err != nil {
		return fmt.Errorf("failed to encode people involved: %w", err)
	}

	var deadline sql.NullString
	if rec.Deadline != "" {
		deadline = sql.NullString{String: rec.Deadline, Valid: true}
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO missions (id, message_id, title, urgency, deadline, action_required, context, people_involved, status, raw_decision)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.MessageID, rec.Title, rec.Urgency, deadline,
		rec.ActionRequired, rec.Context, string(people), rec.Status, rec.RawDecision,
	)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return fmt.Errorf("%w: %s", secondary.ErrDuplicateMission, rec.ID)
		}
		return fmt.Errorf("failed to create mission: %w", err)
	}

	return nil
}

// GetByID retrieves a mission by its ID.
func (r *MissionRepository) GetByID(ctx context.Context, id string) (*secondary.MissionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, message_id, title, urgency, deadline, action_required, context, people_involved, status, task_ref, created_at, completed_at, raw_decision
		 FROM missions WHERE id = ?`, id)

	rec, err := scanMission(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("mission %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mission: %w", err)
	}
	return rec, nil
}

// List retrieves missions matching the given filters, newest first.
func (r *MissionRepository) List(ctx context.Context, filters secondary.MissionFilters) ([]*secondary.MissionRecord, error) {
	query := `SELECT id, message_id, title, urgency, deadline, action_required, context, people_involved, status, task_ref, created_at, completed_at, raw_decision FROM missions`
	args := []any{}

	if filters.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filters.Status)
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list missions: %w", err)
	}
	defer rows.Close()

	var records []*secondary.MissionRecord
	for rows.Next() {
		rec, err := scanMission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mission: %w", err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// UpdateStatus sets the mission status. COMPLETED also stamps completion
// time. An empty taskRef keeps the stored reference (COALESCE merge).
func (r *MissionRepository) UpdateStatus(ctx context.Context, id, status, taskRef string) error {
	var ref sql.NullString
	if taskRef != "" {
		ref = sql.NullString{String: taskRef, Valid: true}
	}

	var res sql.Result
	var err error
	if status == "COMPLETED" {
		res, err = r.db.ExecContext(ctx,
			`UPDATE missions SET status = ?, completed_at = ?, task_ref = COALESCE(?, task_ref) WHERE id = ?`,
			status, time.Now().UTC(), ref, id)
	} else {
		res, err = r.db.ExecContext(ctx,
			`UPDATE missions SET status = ?, task_ref = COALESCE(?, task_ref) WHERE id = ?`,
			status, ref, id)
	}
	if err != nil {
		return fmt.Errorf("failed to update mission status: %w", err)
	}

	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return fmt.Errorf("mission %s not found", id)
	}
	return nil
}

// Stats returns aggregate counts for the status command.
func (r *MissionRepository) Stats(ctx context.Context) (*secondary.MissionStats, error) {
	stats := &secondary.MissionStats{
		ByStatus:  make(map[string]int),
		ByUrgency: make(map[string]int),
	}

	rows, err := r.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM missions GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	urows, err := r.db.QueryContext(ctx, `SELECT urgency, COUNT(*) FROM missions GROUP BY urgency`)
	if err != nil {
		return nil, fmt.Errorf("failed to count by urgency: %w", err)
	}
	defer urows.Close()
	for urows.Next() {
		var urgency string
		var count int
		if err := urows.Scan(&urgency, &count); err != nil {
			return nil, err
		}
		stats.ByUrgency[urgency] = count
	}
	if err := urows.Err(); err != nil {
		return nil, err
	}

	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM missions WHERE created_at > datetime('now', '-24 hours')`,
	).Scan(&stats.Last24h)
	if err != nil {
		return nil, fmt.Errorf("failed to count recent missions: %w", err)
	}

	var withTask sql.NullInt64
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), SUM(has_task) FROM processed_messages`,
	).Scan(&stats.TotalProcessed, &withTask)
	if err != nil {
		return nil, fmt.Errorf("failed to count processed messages: %w", err)
	}
	stats.WithTask = int(withTask.Int64)

	return stats, nil
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMission(s scanner) (*secondary.MissionRecord, error) {
	var (
		rec         secondary.MissionRecord
		deadline    sql.NullString
		action      sql.NullString
		context     sql.NullString
		people      sql.NullString
		taskRef     sql.NullString
		raw         sql.NullString
		createdAt   time.Time
		completedAt sql.NullTime
	)

	err := s.Scan(&rec.ID, &rec.MessageID, &rec.Title, &rec.Urgency, &deadline,
		&action, &context, &people, &rec.Status, &taskRef, &createdAt, &completedAt, &raw)
	if err != nil {
		return nil, err
	}

	rec.Deadline = deadline.String
	rec.ActionRequired = action.String
	rec.Context = context.String
	rec.TaskRef = taskRef.String
	rec.RawDecision = raw.String
	rec.CreatedAt = createdAt
	if completedAt.Valid {
		t := completedAt.Time
		rec.CompletedAt = &t
	}
	if people.Valid && people.String != "" {
		if err := json.Unmarshal([]byte(people.String), &rec.PeopleInvolved); err != nil {
			return nil, fmt.Errorf("failed to decode people involved: %w", err)
		}
	}

	return &rec, nil
}
