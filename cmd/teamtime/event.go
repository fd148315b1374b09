package main

import (
	"context"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mmynk/teamtime/internal/models"
)

var eventCmd = &cobra.Command{
	Use:     "event",
	Short:   "Manage events",
	GroupID: "calendar",
}

var eventAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := eventFromFlags(cmd, models.Event{Title: args[0]})
		if err != nil {
			return err
		}

		created, err := engine.CreateEvent(context.Background(), e)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(created)
		} else {
			printEvent(created)
		}
		return nil
	},
}

var eventListCmd = &cobra.Command{
	Use:   "list",
	Short: "List events, optionally for one day",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		day, _ := cmd.Flags().GetString("date")

		var events []models.Event
		if day == "" {
			events = engine.Events.GetAllEvents()
		} else {
			date, err := models.ParseDate(day)
			if err != nil {
				return err
			}
			events = engine.Events.GetEventsByDate(date)
		}

		slices.SortStableFunc(events, func(a, b models.Event) int {
			if c := a.Date.In(cfgLocation()).Compare(b.Date.In(cfgLocation())); c != 0 {
				return c
			}
			return a.StartTime - b.StartTime
		})

		if jsonOutput {
			printJSON(events)
		} else {
			printEventTable(events)
		}
		return nil
	},
}

var eventEditCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change an event",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event id %q", args[0])
		}

		current, ok := engine.Events.GetEvent(id)
		if !ok {
			return fmt.Errorf("event %d not found", id)
		}

		e, err := eventFromFlags(cmd, current)
		if err != nil {
			return err
		}
		if err := engine.EditEvent(context.Background(), e); err != nil {
			return err
		}

		updated, _ := engine.Events.GetEvent(id)
		if jsonOutput {
			printJSON(updated)
		} else {
			printEvent(updated)
		}
		return nil
	},
}

var eventDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more events",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, arg := range args {
			id, err := strconv.ParseInt(arg, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid event id %q", arg)
			}
			if err := engine.DeleteEvent(context.Background(), id); err != nil {
				return err
			}
			fmt.Printf("Deleted %d\n", id)
		}
		return nil
	},
}

// eventFromFlags applies the flags that were set on top of base.
func eventFromFlags(cmd *cobra.Command, base models.Event) (models.Event, error) {
	e := base
	flags := cmd.Flags()

	if flags.Changed("title") {
		e.Title, _ = flags.GetString("title")
	}
	if flags.Changed("description") {
		e.Description, _ = flags.GetString("description")
	}
	if flags.Changed("color") {
		e.Color, _ = flags.GetString("color")
	}
	if flags.Changed("group") {
		e.GroupID, _ = flags.GetString("group")
	}
	if flags.Changed("date") || e.Date.IsZero() {
		raw, _ := flags.GetString("date")
		date, err := models.ParseDate(raw)
		if err != nil {
			return e, err
		}
		e.Date = date
	}

	if allDay, _ := flags.GetBool("all-day"); allDay {
		e.StartTime, e.EndTime = 0, models.MinutesPerDay
		return e, nil
	}
	if flags.Changed("start") || base.ID == 0 {
		raw, _ := flags.GetString("start")
		start, err := parseClock(raw)
		if err != nil {
			return e, err
		}
		e.StartTime = start
	}
	if flags.Changed("end") || base.ID == 0 {
		raw, _ := flags.GetString("end")
		end, err := parseClock(raw)
		if err != nil {
			return e, err
		}
		e.EndTime = end
	}
	return e, nil
}

func addEventFlags(cmd *cobra.Command, withTitle bool) {
	if withTitle {
		cmd.Flags().String("title", "", "event title")
	}
	cmd.Flags().StringP("description", "d", "", "event description")
	cmd.Flags().String("date", "", "day of the event (YYYY-MM-DD)")
	cmd.Flags().String("start", "09:00", "start time (HH:MM)")
	cmd.Flags().String("end", "10:00", "end time (HH:MM, 24:00 for end of day)")
	cmd.Flags().Bool("all-day", false, "span the whole day")
	cmd.Flags().String("color", "", "event color (#RRGGBB), used when not in a group")
	cmd.Flags().StringP("group", "g", "", "group ID")
}

func init() {
	addEventFlags(eventAddCmd, false)
	eventAddCmd.MarkFlagRequired("date")

	addEventFlags(eventEditCmd, true)

	eventListCmd.Flags().String("date", "", "only list events on this day (YYYY-MM-DD)")

	eventCmd.AddCommand(eventAddCmd)
	eventCmd.AddCommand(eventListCmd)
	eventCmd.AddCommand(eventEditCmd)
	eventCmd.AddCommand(eventDeleteCmd)
}
