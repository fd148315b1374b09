package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/mmynk/teamtime/internal/models"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printEvent(e models.Event) {
	fmt.Printf("ID:          %d\n", e.ID)
	fmt.Printf("Title:       %s\n", models.DisplayTitle(e))
	fmt.Printf("Date:        %s\n", e.Date)
	fmt.Printf("Time:        %s\n", timeRange(e))
	if e.Description != "" {
		fmt.Printf("Description: %s\n", e.Description)
	}
	if g := engine.GroupOf(e); g != nil {
		fmt.Printf("Group:       %s (%s)\n", g.Name, g.ID)
	}
	fmt.Printf("Color:       %s\n", models.EffectiveColor(e, engine.GroupOf(e)))
}

func printEventTable(events []models.Event) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tTIME\tTITLE\tGROUP\tCOLOR")
	for _, e := range events {
		group := ""
		if g := engine.GroupOf(e); g != nil {
			group = g.Name
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, timeRange(e), truncate(models.DisplayTitle(e), 40), group,
			models.EffectiveColor(e, engine.GroupOf(e)))
	}
	w.Flush()
	fmt.Printf("\n%d event(s)\n", len(events))
}

func printGroupTable(groups []models.Group) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCOLOR\tEVENTS")
	for _, g := range groups {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", g.ID, g.Name, g.Color, len(g.Events))
	}
	w.Flush()
	fmt.Printf("\n%d group(s)\n", len(groups))
}

func timeRange(e models.Event) string {
	if models.IsAllDay(e) {
		return "all day"
	}
	return formatClock(e.StartTime) + "-" + formatClock(e.EndTime)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.TrimSpace(s[:n-3]) + "..."
}
