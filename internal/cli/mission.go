// Package cli contains the cobra commands for the inkwell binary.
package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/inkwell/internal/wire"
)

// MissionCmd returns the mission command group.
func MissionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mission",
		Short: "Manage missions extracted from the inbox",
		Long:  "List, inspect, complete, cancel, and reprint missions in the inkwell ledger",
	}

	cmd.AddCommand(missionListCmd())
	cmd.AddCommand(missionShowCmd())
	cmd.AddCommand(missionCompleteCmd())
	cmd.AddCommand(missionCancelCmd())
	cmd.AddCommand(missionPrintCmd())

	return cmd
}

func missionListCmd() *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List missions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.MissionService()
			if err != nil {
				return err
			}

			missions, err := svc.List(context.Background(), strings.ToUpper(status), limit)
			if err != nil {
				return fmt.Errorf("failed to list missions: %w", err)
			}

			if len(missions) == 0 {
				fmt.Println("No missions found")
				return nil
			}

			fmt.Printf("\n%-14s %-10s %-12s %s\n", "ID", "URGENCY", "STATUS", "TITLE")
			fmt.Println("────────────────────────────────────────────────────────────────")
			for _, m := range missions {
				fmt.Printf("%-14s %-10s %-12s %s\n",
					m.ID, urgencyColor(m.Urgency), statusColor(m.Status), m.Title)
			}
			fmt.Println()
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (NEW, IN_PROGRESS, COMPLETED, CANCELLED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of missions to show")

	return cmd
}

func missionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [mission-id]",
		Short: "Show mission details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.MissionService()
			if err != nil {
				return err
			}

			m, err := svc.Get(context.Background(), args[0])
			if err != nil {
				return err
			}

			fmt.Printf("\nMission: %s\n", m.ID)
			fmt.Printf("Title:   %s\n", m.Title)
			fmt.Printf("Urgency: %s\n", urgencyColor(m.Urgency))
			fmt.Printf("Status:  %s\n", statusColor(m.Status))
			if m.Deadline != "" {
				fmt.Printf("Deadline: %s\n", m.Deadline)
			}
			if m.ActionRequired != "" {
				fmt.Printf("Action:  %s\n", m.ActionRequired)
			}
			if m.Context != "" {
				fmt.Printf("Context: %s\n", m.Context)
			}
			if len(m.PeopleInvolved) > 0 {
				fmt.Printf("People:  %s\n", strings.Join(m.PeopleInvolved, ", "))
			}
			if m.TaskRef != "" {
				fmt.Printf("Task:    %s\n", m.TaskRef)
			}
			fmt.Printf("Created: %s\n", m.CreatedAt.Format("2006-01-02 15:04"))
			if m.CompletedAt != nil {
				fmt.Printf("Completed: %s\n", m.CompletedAt.Format("2006-01-02 15:04"))
			}
			fmt.Println()
			return nil
		},
	}
}

func missionCompleteCmd() *cobra.Command {
	var taskRef string

	cmd := &cobra.Command{
		Use:   "complete [mission-id]",
		Short: "Mark a mission completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.MissionService()
			if err != nil {
				return err
			}
			if err := svc.Complete(context.Background(), args[0], taskRef); err != nil {
				return err
			}
			fmt.Printf("✓ Mission %s completed\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&taskRef, "task", "", "External task reference to attach")

	return cmd
}

func missionCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel [mission-id]",
		Short: "Cancel a mission",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := wire.MissionService()
			if err != nil {
				return err
			}
			if err := svc.Cancel(context.Background(), args[0]); err != nil {
				return err
			}
			fmt.Printf("✓ Mission %s cancelled\n", args[0])
			return nil
		},
	}
}

func missionPrintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "print [mission-id]",
		Short: "Reprint a mission briefing from its stored decision",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			defer wire.Shutdown()

			svc, err := wire.MissionService()
			if err != nil {
				return err
			}
			ok, err := svc.Reprint(context.Background(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("print failed for mission %s", args[0])
			}
			fmt.Printf("✓ Mission %s sent to printer\n", args[0])
			return nil
		},
	}
}

func urgencyColor(urgency string) string {
	switch urgency {
	case "CRITICAL":
		return color.New(color.FgRed, color.Bold).Sprint(urgency)
	case "HIGH":
		return color.RedString(urgency)
	case "MEDIUM":
		return color.YellowString(urgency)
	case "LOW":
		return color.CyanString(urgency)
	default:
		return urgency
	}
}

func statusColor(status string) string {
	switch status {
	case "NEW":
		return color.GreenString(status)
	case "IN_PROGRESS":
		return color.YellowString(status)
	case "COMPLETED":
		return color.HiBlackString(status)
	case "CANCELLED":
		return color.HiBlackString(status)
	default:
		return status
	}
}
