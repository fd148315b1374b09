package models

import (
	"errors"
	"regexp"
	"slices"
	"strings"
)

var (
	ErrGroupNameRequired  = errors.New("group name is required")
	ErrGroupColorRequired = errors.New("group color is required")
	ErrInvalidGroupColor  = errors.New("group color must be a 6-digit hex color like #FF0000")
)

// DefaultColor is used when neither an event nor its group carries a color.
const DefaultColor = "#808080"

var hexColor = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// Group is a named, colored collection of events.
//
// Events mirrors the set of event IDs whose GroupID equals ID once
// synchronization has settled. Duplicates are never stored.
type Group struct {
	// ID is the unique identifier for the group (time-ordered UUID).
	ID string `json:"id"`

	// Name is the display name of the group (e.g., "Work", "Family").
	Name string `json:"name"`

	// Color is a 6-digit hex color such as "#FF0000".
	Color string `json:"color"`

	// Events is the list of member event IDs.
	Events []int64 `json:"events"`
}

// HasEvent reports whether eventID is a member of g.
func (g Group) HasEvent(eventID int64) bool {
	return slices.Contains(g.Events, eventID)
}

// Clone returns a copy of g that does not share the Events slice.
func (g Group) Clone() Group {
	g.Events = slices.Clone(g.Events)
	if g.Events == nil {
		g.Events = []int64{}
	}
	return g
}

// ValidateGroup checks a group name and color as entered by a user.
func ValidateGroup(name, color string) error {
	if strings.TrimSpace(name) == "" {
		return ErrGroupNameRequired
	}
	if color == "" {
		return ErrGroupColorRequired
	}
	if !hexColor.MatchString(color) {
		return ErrInvalidGroupColor
	}
	return nil
}

// EffectiveColor resolves the color an event is rendered with.
// The group's color wins; pass nil when the event has no group.
func EffectiveColor(e Event, group *Group) string {
	if group != nil && group.Color != "" {
		return group.Color
	}
	if e.Color != "" {
		return e.Color
	}
	return DefaultColor
}

// GroupEventsByGroup indexes events by their GroupID. Events without a
// group are left out.
func GroupEventsByGroup(events []Event) map[string][]Event {
	byGroup := make(map[string][]Event)
	for _, e := range events {
		if e.GroupID == "" {
			continue
		}
		byGroup[e.GroupID] = append(byGroup[e.GroupID], e)
	}
	return byGroup
}
