package cli

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/inkwell/internal/wire"
)

// MonitorCmd returns the monitor command, the long-running pipeline loop.
func MonitorCmd() *cobra.Command {
	var intervalMinutes int

	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Watch the inbox continuously",
		Long: `Run the pipeline loop: check the inbox on an interval, classify new
messages, print mission briefings and tickets, and fire side effects.
Stops cleanly on SIGINT/SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Shutdown()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc, err := wire.MonitorService(ctx)
			if err != nil {
				return err
			}

			interval := intervalMinutes
			if interval <= 0 {
				cfg, err := wire.Config()
				if err != nil {
					return err
				}
				interval = cfg.Monitor.IntervalMinutes
			}
			if interval <= 0 {
				interval = 5
			}

			fmt.Printf("Monitoring inbox every %d minutes (Ctrl-C to stop)\n", interval)

			err = svc.Run(ctx, time.Duration(interval)*time.Minute)
			if errors.Is(err, context.Canceled) {
				fmt.Println("Stopped")
				return nil
			}
			return err
		},
	}

	cmd.Flags().IntVar(&intervalMinutes, "interval", 0, "Check interval in minutes (overrides config)")

	return cmd
}
