package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/inkwell/internal/wire"
)

// CheckCmd returns the check command, which runs exactly one pipeline cycle.
func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Run one check cycle now",
		Long:  "Fetch new messages once, classify them, and print briefings/tickets, then exit.",
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Shutdown()

			ctx := context.Background()
			svc, err := wire.MonitorService(ctx)
			if err != nil {
				return err
			}

			result, err := svc.RunCycle(ctx)
			if err != nil {
				return err
			}

			fmt.Printf("Fetched %d, processed %d (%d missions, %d tickets), skipped %d, failures %d\n",
				result.Fetched, result.Processed, result.Missions, result.Tickets,
				result.Skipped, result.Failures)
			return nil
		},
	}
}
