package service

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/mmynk/teamtime/internal/app"
	"github.com/mmynk/teamtime/internal/ics"
	"github.com/mmynk/teamtime/internal/models"
)

// EventService serves the /api/events routes.
type EventService struct {
	app *app.App
	loc *time.Location
}

// NewEventService creates an EventService. Times in exported calendars are
// interpreted in loc.
func NewEventService(a *app.App, loc *time.Location) *EventService {
	if loc == nil {
		loc = time.Local
	}
	return &EventService{app: a, loc: loc}
}

// ListEvents returns every event, or only one day's events when the date
// query parameter is set.
func (s *EventService) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("date")
	if q == "" {
		writeJSON(w, http.StatusOK, s.app.Events.GetAllEvents())
		return
	}

	date, err := models.ParseDate(q)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Events.GetEventsByDate(date))
}

// GetEvent returns a single event.
func (s *EventService) GetEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	e, ok := s.app.Events.GetEvent(id)
	if !ok {
		writeError(w, fmt.Errorf("%w: %d", app.ErrEventNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// CreateEvent stores the event in the request body.
func (s *EventService) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var e models.Event
	if err := decode(r, &e); err != nil {
		writeError(w, err)
		return
	}

	created, err := s.app.CreateEvent(r.Context(), e)
	if err != nil {
		slog.Warn("CreateEvent failed", "title", e.Title, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Event created", "event_id", created.ID, "group_id", created.GroupID)
	writeJSON(w, http.StatusCreated, created)
}

// UpdateEvent replaces the event named in the path.
func (s *EventService) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var e models.Event
	if err := decode(r, &e); err != nil {
		writeError(w, err)
		return
	}
	e.ID = id

	if err := s.app.EditEvent(r.Context(), e); err != nil {
		slog.Warn("UpdateEvent failed", "event_id", id, "error", err)
		writeError(w, err)
		return
	}

	updated, _ := s.app.Events.GetEvent(id)
	writeJSON(w, http.StatusOK, updated)
}

// DeleteEvent removes the event named in the path.
func (s *EventService) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	id, err := eventID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := s.app.DeleteEvent(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Event deleted", "event_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// ExportCalendar serves every event as an iCalendar feed.
func (s *EventService) ExportCalendar(w http.ResponseWriter, r *http.Request) {
	body := ics.Export(s.app.Events.GetAllEvents(), s.app.Groups.GetAllGroups(), s.loc)

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="teamtime.ics"`)
	if _, err := w.Write([]byte(body)); err != nil {
		slog.Error("Failed to write calendar", "error", err)
	}
}

func eventID(r *http.Request) (int64, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid event id %q", errBadRequest, raw)
	}
	return id, nil
}
