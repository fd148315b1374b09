// Package ics converts events to and from iCalendar (RFC 5545) documents.
package ics

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/mmynk/teamtime/internal/models"
)

const productID = "-//TeamTime//Calendar//EN"

// propertyColor is the RFC 7986 COLOR property.
const propertyColor = ical.ComponentProperty("COLOR")

// Export renders events as a VCALENDAR. Group names become CATEGORIES and
// the effective color is written as COLOR. Times are interpreted in loc.
func Export(events []models.Event, groups []models.Group, loc *time.Location) string {
	byID := make(map[string]*models.Group, len(groups))
	for i := range groups {
		byID[groups[i].ID] = &groups[i]
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(productID)

	now := time.Now()
	for _, e := range events {
		ve := cal.AddEvent(fmt.Sprintf("%d@teamtime", e.ID))
		ve.SetDtStampTime(now)
		ve.SetSummary(models.DisplayTitle(e))
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}

		if models.IsAllDay(e) {
			ve.SetAllDayStartAt(e.Date.In(loc))
			ve.SetAllDayEndAt(e.Date.AddDays(1).In(loc))
		} else {
			ve.SetStartAt(models.StartAt(e, loc))
			ve.SetEndAt(models.EndAt(e, loc))
		}

		group := byID[e.GroupID]
		if group != nil {
			ve.AddProperty(ical.ComponentPropertyCategories, group.Name)
		}
		ve.AddProperty(propertyColor, models.EffectiveColor(e, group))
	}

	return cal.Serialize()
}

// Import parses VEVENTs from r into events without IDs or groups. Events
// spanning midnight are cut at the end of their first day; events that
// cannot be represented are skipped and logged.
func Import(r io.Reader, loc *time.Location) ([]models.Event, error) {
	cal, err := ical.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar: %w", err)
	}

	events := make([]models.Event, 0)
	for _, ve := range cal.Events() {
		e, err := convert(ve, loc)
		if err != nil {
			uid := ""
			if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
				uid = p.Value
			}
			slog.Warn("Skipping VEVENT", "uid", uid, "error", err)
			continue
		}
		events = append(events, e)
	}

	slog.Info("Calendar imported", "event_count", len(events))
	return events, nil
}

func convert(ve *ical.VEvent, loc *time.Location) (models.Event, error) {
	var e models.Event

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		e.Title = p.Value
	}
	if p := ve.GetProperty(ical.ComponentPropertyDescription); p != nil {
		e.Description = p.Value
	}
	if p := ve.GetProperty(propertyColor); p != nil {
		e.Color = p.Value
	}

	dtStart := ve.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return e, errors.New("missing DTSTART")
	}

	// Date values (VALUE=DATE) have no time part.
	if !strings.Contains(dtStart.Value, "T") {
		day, err := time.ParseInLocation("20060102", dtStart.Value, loc)
		if err != nil {
			return e, fmt.Errorf("invalid DTSTART: %w", err)
		}
		e.Date = models.DateOf(day)
		e.StartTime, e.EndTime = 0, models.MinutesPerDay
		return e, nil
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return e, fmt.Errorf("invalid DTSTART: %w", err)
	}
	start = start.In(loc)

	end, err := ve.GetEndAt()
	if err != nil {
		end = start.Add(time.Hour)
	}
	end = end.In(loc)

	e.Date = models.DateOf(start)
	e.StartTime = start.Hour()*60 + start.Minute()

	midnight := e.Date.AddDays(1).In(loc)
	if !end.Before(midnight) {
		e.EndTime = models.MinutesPerDay
	} else {
		e.EndTime = end.Hour()*60 + end.Minute()
	}

	if err := models.ValidateEvent(e); err != nil {
		return e, err
	}
	return e, nil
}
