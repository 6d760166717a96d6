package primary

import (
	"context"
	"time"

	"github.com/example/inkwell/internal/ports/secondary"
)

// CycleResult summarizes one check cycle.
type CycleResult struct {
	Fetched   int
	Skipped   int
	Processed int
	Missions  int
	Tickets   int
	Failures  int
}

// StatusReport is the aggregate view for the status command.
type StatusReport struct {
	Watermark       time.Time
	IntervalMinutes int
	Printer         string
	Stats           *secondary.MissionStats
}

// MonitorService drives the ingestion -> classification -> delivery pipeline.
type MonitorService interface {
	// RunCycle runs one check cycle: fetch, dedup, classify, persist,
	// deliver, mark processed, advance watermark. Per-message errors are
	// contained; only a source outage aborts the cycle.
	RunCycle(ctx context.Context) (*CycleResult, error)

	// Run loops RunCycle on the given interval until ctx is cancelled.
	Run(ctx context.Context, interval time.Duration) error

	// Status returns the aggregate pipeline status.
	Status(ctx context.Context) (*StatusReport, error)
}
