package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/inkwell/internal/wire"
)

// StatusCmd returns the status command.
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline status",
		Long: `Display the pipeline state: selected printer transport, check watermark,
monitoring interval, and mission counts by status and urgency.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Shutdown()

			svc, err := wire.MonitorService(context.Background())
			if err != nil {
				return err
			}

			report, err := svc.Status(context.Background())
			if err != nil {
				return err
			}

			bold := color.New(color.Bold)
			bold.Println("Inkwell Status")
			fmt.Println()
			fmt.Printf("Printer:    %s\n", report.Printer)
			fmt.Printf("Last check: %s\n", report.Watermark.Local().Format("2006-01-02 15:04:05"))
			fmt.Printf("Interval:   every %d minutes\n", report.IntervalMinutes)
			fmt.Println()

			s := report.Stats
			fmt.Printf("Processed messages: %d (%d with tasks)\n", s.TotalProcessed, s.WithTask)
			fmt.Printf("Missions last 24h:  %d\n", s.Last24h)
			fmt.Println()

			if len(s.ByStatus) > 0 {
				fmt.Println("By status:")
				for _, st := range []string{"NEW", "IN_PROGRESS", "COMPLETED", "CANCELLED"} {
					if n := s.ByStatus[st]; n > 0 {
						fmt.Printf("  %-12s %d\n", statusColor(st), n)
					}
				}
				fmt.Println()
			}

			if len(s.ByUrgency) > 0 {
				fmt.Println("By urgency:")
				for _, u := range []string{"CRITICAL", "HIGH", "MEDIUM", "LOW", "INFO"} {
					if n := s.ByUrgency[u]; n > 0 {
						fmt.Printf("  %-10s %d\n", urgencyColor(u), n)
					}
				}
				fmt.Println()
			}

			return nil
		},
	}
}
