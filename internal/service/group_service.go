package service

import (
	"log/slog"
	"net/http"

	"github.com/mmynk/teamtime/internal/app"
	"github.com/mmynk/teamtime/internal/models"
)

// GroupService serves the /api/groups routes.
type GroupService struct {
	app *app.App
}

// NewGroupService creates a GroupService.
func NewGroupService(a *app.App) *GroupService {
	return &GroupService{app: a}
}

type groupRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// ListGroups returns every group.
func (s *GroupService) ListGroups(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Groups.GetAllGroups())
}

// GetGroup returns a single group.
func (s *GroupService) GetGroup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	g, ok := s.app.Groups.GetGroup(id)
	if !ok {
		writeError(w, app.ErrGroupNotFound)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// CreateGroup creates a group with no events.
func (s *GroupService) CreateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	g, err := s.app.CreateGroup(r.Context(), req.Name, req.Color)
	if err != nil {
		slog.Warn("CreateGroup failed", "name", req.Name, "error", err)
		writeError(w, err)
		return
	}

	slog.Info("Group created", "group_id", g.ID, "name", g.Name)
	writeJSON(w, http.StatusCreated, g)
}

// UpdateGroup renames or recolors the group named in the path.
func (s *GroupService) UpdateGroup(w http.ResponseWriter, r *http.Request) {
	var req groupRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	g, err := s.app.UpdateGroup(r.Context(), models.Group{
		ID:    r.PathValue("id"),
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

// DeleteGroup removes the group named in the path. Its events stay but
// lose their group.
func (s *GroupService) DeleteGroup(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.app.DeleteGroup(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	slog.Info("Group deleted", "group_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Reconcile runs a membership reconciliation pass and reports what changed.
func (s *GroupService) Reconcile(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.Reconcile(r.Context()))
}
