// Package primary defines the primary ports (driving interfaces) consumed by
// the CLI layer.
package primary

import (
	"context"

	"github.com/example/inkwell/internal/ports/secondary"
)

// MissionService exposes operator-facing mission operations.
type MissionService interface {
	// List returns missions, newest first, optionally filtered by status.
	List(ctx context.Context, status string, limit int) ([]*secondary.MissionRecord, error)

	// Get returns one mission by ID.
	Get(ctx context.Context, id string) (*secondary.MissionRecord, error)

	// Complete marks a mission COMPLETED, stamping the completion time.
	// taskRef is merged into the stored external reference when non-empty.
	Complete(ctx context.Context, id, taskRef string) error

	// Cancel marks a mission CANCELLED.
	Cancel(ctx context.Context, id string) error

	// Reprint re-renders a stored mission from its raw decision payload
	// and sends it to the printer. Returns whether the print succeeded.
	Reprint(ctx context.Context, id string) (bool, error)
}
