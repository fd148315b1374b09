package models

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	// MinutesPerDay is the upper bound for StartTime and EndTime.
	MinutesPerDay = 1440

	// UntitledEvent is shown when an event has a blank title.
	UntitledEvent = "Untitled"
)

var (
	ErrInvalidTimeRange = errors.New("event end time must be after start time")
	ErrTimeOutOfRange   = errors.New("event time must be between 0 and 1440 minutes")
	ErrInvalidDate      = errors.New("invalid date")
)

// Event represents a calendar entry on a single day.
type Event struct {
	// ID is assigned on creation and never changes afterwards.
	ID int64 `json:"id"`

	// Title is the display name. Blank titles render as UntitledEvent.
	Title string `json:"title"`

	Description string `json:"description"`

	// Date is the day the event takes place on.
	Date Date `json:"date"`

	// StartTime and EndTime are minutes since midnight, 0..1440.
	StartTime int `json:"startTime"`
	EndTime   int `json:"endTime"`

	// Color is the event's own color. A group color takes precedence when
	// the event belongs to a group.
	Color string `json:"color"`

	// GroupID references a Group, or is empty.
	GroupID string `json:"groupId,omitempty"`
}

// ValidateEvent checks the time range and date of e.
func ValidateEvent(e Event) error {
	if !e.Date.Valid() {
		return fmt.Errorf("%w: %s", ErrInvalidDate, e.Date)
	}
	if e.StartTime < 0 || e.StartTime > MinutesPerDay || e.EndTime < 0 || e.EndTime > MinutesPerDay {
		return ErrTimeOutOfRange
	}
	if e.StartTime >= e.EndTime {
		return ErrInvalidTimeRange
	}
	return nil
}

// IsAllDay reports whether e covers the whole day.
func IsAllDay(e Event) bool {
	return e.StartTime == 0 && e.EndTime == MinutesPerDay
}

// StartsBefore reports whether a starts strictly earlier than b.
func StartsBefore(a, b Event) bool {
	return a.StartTime < b.StartTime
}

// EndsBefore reports whether a ends strictly earlier than b.
func EndsBefore(a, b Event) bool {
	return a.EndTime < b.EndTime
}

// CollidesWith reports whether the time ranges of a and b overlap.
// Events that only touch at a boundary do not collide.
func CollidesWith(a, b Event) bool {
	return min(a.EndTime, b.EndTime) > max(a.StartTime, b.StartTime)
}

// StartAt converts the event start to an instant in loc.
func StartAt(e Event, loc *time.Location) time.Time {
	return e.Date.In(loc).Add(time.Duration(e.StartTime) * time.Minute)
}

// EndAt converts the event end to an instant in loc. An EndTime of 1440
// yields midnight of the following day.
func EndAt(e Event, loc *time.Location) time.Time {
	return e.Date.In(loc).Add(time.Duration(e.EndTime) * time.Minute)
}

// DisplayTitle returns the title to show for e.
func DisplayTitle(e Event) string {
	if strings.TrimSpace(e.Title) == "" {
		return UntitledEvent
	}
	return e.Title
}

var (
	idMu   sync.Mutex
	lastID int64
)

// NewEventID returns a millisecond-timestamp ID, bumped when needed so that
// IDs handed out by one process are strictly increasing.
func NewEventID() int64 {
	idMu.Lock()
	defer idMu.Unlock()

	id := time.Now().UnixMilli()
	if id <= lastID {
		id = lastID + 1
	}
	lastID = id
	return id
}

// ReserveEventIDs makes every later NewEventID call return a value above
// floor. Stores call it with the largest ID they hold.
func ReserveEventIDs(floor int64) {
	idMu.Lock()
	defer idMu.Unlock()

	if floor > lastID {
		lastID = floor
	}
}
