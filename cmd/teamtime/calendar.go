package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmynk/teamtime/internal/ics"
)

func cfgLocation() *time.Location {
	loc, err := cfg.Location()
	if err != nil {
		slog.Warn("Invalid timezone, using local time", "timezone", cfg.Timezone, "error", err)
		return time.Local
	}
	return loc
}

var reconcileCmd = &cobra.Command{
	Use:     "reconcile",
	Short:   "Repair group membership and dangling group references",
	GroupID: "calendar",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		report := engine.Reconcile(context.Background())
		if jsonOutput {
			printJSON(report)
			return nil
		}
		if !report.Changed() {
			fmt.Println("Nothing to repair")
			return nil
		}
		fmt.Printf("Cleared references: %d\n", report.ClearedReferences)
		fmt.Printf("Members added:      %d\n", report.Added)
		fmt.Printf("Members removed:    %d\n", report.Removed)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Write all events as an iCalendar file",
	GroupID: "calendar",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		body := ics.Export(engine.Events.GetAllEvents(), engine.Groups.GetAllGroups(), cfgLocation())

		if out == "" || out == "-" {
			fmt.Print(body)
			return nil
		}
		if err := os.WriteFile(out, []byte(body), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		fmt.Printf("Exported %d event(s) to %s\n", len(engine.Events.GetAllEvents()), out)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:     "import <file.ics>",
	Short:   "Create events from an iCalendar file",
	GroupID: "calendar",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		group, _ := cmd.Flags().GetString("group")

		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()

		events, err := ics.Import(f, cfgLocation())
		if err != nil {
			return err
		}

		ctx := context.Background()
		imported := 0
		for _, e := range events {
			e.GroupID = group
			if _, err := engine.CreateEvent(ctx, e); err != nil {
				slog.Warn("Skipping imported event", "title", e.Title, "date", e.Date, "error", err)
				continue
			}
			imported++
		}

		fmt.Printf("Imported %d of %d event(s)\n", imported, len(events))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", "", "output file (default stdout)")
	importCmd.Flags().StringP("group", "g", "", "add imported events to this group")
}
