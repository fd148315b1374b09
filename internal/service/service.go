// Package service exposes the calendar engine as a JSON HTTP API.
package service

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/teamtime/internal/app"
	"github.com/mmynk/teamtime/internal/models"
	"github.com/mmynk/teamtime/internal/store"
)

// Register mounts every route on mux. gatherer may be nil, in which case
// /metrics is not served.
func Register(mux *http.ServeMux, a *app.App, loc *time.Location, gatherer prometheus.Gatherer) {
	events := NewEventService(a, loc)
	groups := NewGroupService(a)

	mux.HandleFunc("GET /api/events", events.ListEvents)
	mux.HandleFunc("POST /api/events", events.CreateEvent)
	mux.HandleFunc("GET /api/events/{id}", events.GetEvent)
	mux.HandleFunc("PUT /api/events/{id}", events.UpdateEvent)
	mux.HandleFunc("DELETE /api/events/{id}", events.DeleteEvent)
	mux.HandleFunc("GET /api/calendar.ics", events.ExportCalendar)

	mux.HandleFunc("GET /api/groups", groups.ListGroups)
	mux.HandleFunc("POST /api/groups", groups.CreateGroup)
	mux.HandleFunc("GET /api/groups/{id}", groups.GetGroup)
	mux.HandleFunc("PUT /api/groups/{id}", groups.UpdateGroup)
	mux.HandleFunc("DELETE /api/groups/{id}", groups.DeleteGroup)

	mux.HandleFunc("POST /api/reconcile", groups.Reconcile)
	mux.HandleFunc("POST /api/reload", func(w http.ResponseWriter, r *http.Request) {
		a.Reload(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	if gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError maps engine errors to HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, app.ErrEventNotFound), errors.Is(err, app.ErrGroupNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrDuplicateEvent):
		return http.StatusConflict
	case errors.Is(err, models.ErrInvalidTimeRange),
		errors.Is(err, models.ErrTimeOutOfRange),
		errors.Is(err, models.ErrInvalidDate),
		errors.Is(err, models.ErrGroupNameRequired),
		errors.Is(err, models.ErrGroupColorRequired),
		errors.Is(err, models.ErrInvalidGroupColor),
		errors.Is(err, app.ErrUnknownGroup),
		errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

var errBadRequest = errors.New("bad request")

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
