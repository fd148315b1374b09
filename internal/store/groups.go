package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/mmynk/teamtime/internal/bus"
	"github.com/mmynk/teamtime/internal/metrics"
	"github.com/mmynk/teamtime/internal/models"
	"github.com/mmynk/teamtime/internal/storage"
)

// ErrGroupNotFound is returned by UpdateGroup for an unknown ID.
var ErrGroupNotFound = errors.New("group not found")

// GroupStore owns the group collection and each group's membership list.
//
// Change notifications are deferred rather than published, so subscribers
// registered later in the same turn still see them once the bus settles.
type GroupStore struct {
	mu      sync.RWMutex
	groups  []models.Group
	kv      storage.Store
	bus     *bus.Bus
	metrics *metrics.Metrics
}

// NewGroupStore creates a GroupStore and loads its contents from kv.
// m may be nil.
func NewGroupStore(ctx context.Context, kv storage.Store, b *bus.Bus, m *metrics.Metrics) *GroupStore {
	s := &GroupStore{kv: kv, bus: b, metrics: m}

	groups, found, err := loadList[models.Group](ctx, kv, storage.KeyGroups)
	switch {
	case err != nil:
		slog.Error("Failed to load groups, starting empty", "error", err)
		m.StorageError(storage.KeyGroups, "read")
		groups = nil
	case !found:
		slog.Info("No stored groups found")
	default:
		slog.Info("Loaded groups from storage", "count", len(groups))
	}
	s.groups = normalizeGroups(groups)
	m.SetGroups(len(s.groups))

	return s
}

// CreateGroup adds a group with an empty membership list. Name and color
// must be non-empty; format checks are left to models.ValidateGroup.
func (s *GroupStore) CreateGroup(ctx context.Context, name, color string) (models.Group, error) {
	if name == "" {
		return models.Group{}, models.ErrGroupNameRequired
	}
	if color == "" {
		return models.Group{}, models.ErrGroupColorRequired
	}

	group := models.Group{
		ID:     newGroupID(),
		Name:   name,
		Color:  color,
		Events: []int64{},
	}

	s.mu.Lock()
	s.groups = append(s.groups, group)
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyGroups, "create")
	slog.Info("Group created", "group_id", group.ID, "name", name, "color", color)
	return group.Clone(), nil
}

// UpdateGroup replaces the name and color of an existing group. The stored
// membership list is kept whatever g.Events holds.
func (s *GroupStore) UpdateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	s.mu.Lock()
	i := s.indexOf(g.ID)
	if i < 0 {
		s.mu.Unlock()
		return models.Group{}, ErrGroupNotFound
	}

	g.Events = s.groups[i].Events
	s.groups[i] = g
	s.commitLocked(ctx)
	updated := g.Clone()
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyGroups, "update")
	slog.Info("Group updated", "group_id", g.ID)
	return updated, nil
}

// DeleteGroup removes a group and reports whether it existed. Events that
// referenced it are left alone here; a GroupDeleted message is deferred
// for whoever repairs them.
func (s *GroupStore) DeleteGroup(ctx context.Context, id string) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}

	s.groups = slices.Delete(s.groups, i, i+1)
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.bus.Defer(bus.GroupDeleted{GroupID: id})
	s.metrics.Mutation(storage.KeyGroups, "delete")
	slog.Info("Group deleted", "group_id", id)
	return true
}

// GetGroup looks a group up by ID.
func (s *GroupStore) GetGroup(id string) (models.Group, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.groups[i].Clone(), true
	}
	return models.Group{}, false
}

// GetAllGroups returns a snapshot of every group.
func (s *GroupStore) GetAllGroups() []models.Group {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// AddEventToGroup records eventID as a member of groupID. It reports
// whether anything changed; an existing member or unknown group is a no-op.
func (s *GroupStore) AddEventToGroup(ctx context.Context, groupID string, eventID int64) bool {
	s.mu.Lock()
	i := s.indexOf(groupID)
	if i < 0 {
		s.mu.Unlock()
		slog.Warn("Cannot add event to unknown group", "group_id", groupID, "event_id", eventID)
		return false
	}
	if s.groups[i].HasEvent(eventID) {
		s.mu.Unlock()
		return false
	}

	s.groups[i].Events = append(s.groups[i].Events, eventID)
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyGroups, "add_event")
	slog.Debug("Event added to group", "group_id", groupID, "event_id", eventID)
	return true
}

// RemoveEventFromGroup drops eventID from groupID. It reports whether
// anything changed; a non-member or unknown group is a no-op.
func (s *GroupStore) RemoveEventFromGroup(ctx context.Context, groupID string, eventID int64) bool {
	s.mu.Lock()
	i := s.indexOf(groupID)
	if i < 0 || !s.groups[i].HasEvent(eventID) {
		s.mu.Unlock()
		return false
	}

	s.groups[i].Events = slices.DeleteFunc(s.groups[i].Events, func(id int64) bool { return id == eventID })
	s.commitLocked(ctx)
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyGroups, "remove_event")
	slog.Debug("Event removed from group", "group_id", groupID, "event_id", eventID)
	return true
}

// Reload discards the in-memory list and rereads storage. It reports false,
// keeping the current list, when storage holds nothing or cannot be read.
func (s *GroupStore) Reload(ctx context.Context) bool {
	groups, found, err := loadList[models.Group](ctx, s.kv, storage.KeyGroups)
	if err != nil {
		slog.Error("Failed to reload groups", "error", err)
		s.metrics.StorageError(storage.KeyGroups, "read")
		return false
	}
	if !found {
		return false
	}

	s.mu.Lock()
	s.groups = normalizeGroups(groups)
	s.deferChangedLocked()
	n := len(s.groups)
	s.mu.Unlock()

	s.metrics.SetGroups(n)
	slog.Info("Groups reloaded from storage", "count", n)
	return true
}

// commitLocked persists the list and defers the change notifications.
// Callers hold s.mu.
func (s *GroupStore) commitLocked(ctx context.Context) {
	s.metrics.SetGroups(len(s.groups))
	if err := saveList(ctx, s.kv, storage.KeyGroups, s.groups); err != nil {
		slog.Error("Failed to save groups", "error", err)
		s.metrics.StorageError(storage.KeyGroups, "write")
	}
	s.deferChangedLocked()
}

func (s *GroupStore) deferChangedLocked() {
	s.bus.Defer(bus.GroupsChanged{Groups: s.snapshot()})
	s.bus.Defer(bus.DataChanged{})
}

func (s *GroupStore) snapshot() []models.Group {
	out := make([]models.Group, len(s.groups))
	for i, g := range s.groups {
		out[i] = g.Clone()
	}
	return out
}

func (s *GroupStore) indexOf(id string) int {
	return slices.IndexFunc(s.groups, func(g models.Group) bool { return g.ID == id })
}

// normalizeGroups removes duplicate member IDs left by older data.
func normalizeGroups(groups []models.Group) []models.Group {
	for i := range groups {
		seen := make(map[int64]bool, len(groups[i].Events))
		members := make([]int64, 0, len(groups[i].Events))
		for _, id := range groups[i].Events {
			if !seen[id] {
				seen[id] = true
				members = append(members, id)
			}
		}
		groups[i].Events = members
	}
	return groups
}

// newGroupID returns a time-ordered UUID.
func newGroupID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
