package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mmynk/teamtime/internal/models"
)

// parseClock converts "HH:MM" into minutes since midnight. "24:00" is the
// end of the day.
func parseClock(s string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	hours, err := strconv.Atoi(h)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	minutes, err := strconv.Atoi(m)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	if hours < 0 || minutes < 0 || minutes > 59 {
		return 0, fmt.Errorf("invalid time %q", s)
	}

	total := hours*60 + minutes
	if total > models.MinutesPerDay {
		return 0, fmt.Errorf("invalid time %q: past end of day", s)
	}
	return total, nil
}

func formatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}
