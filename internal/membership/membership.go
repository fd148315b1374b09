// Package membership keeps event.GroupID and group.Events consistent.
//
// The event store and the group store never call each other. The
// Synchronizer listens for membership intents on the bus and applies them
// to the group store, and clears event references when a group goes away.
// Reconcile repairs whatever drift is left after a crash or an external
// write to storage.
package membership

import (
	"context"
	"log/slog"

	"github.com/mmynk/teamtime/internal/bus"
	"github.com/mmynk/teamtime/internal/models"
)

// EventSource is the part of the event store the synchronizer needs.
type EventSource interface {
	GetAllEvents() []models.Event
	ClearGroup(ctx context.Context, groupID string) int
}

// GroupMembership is the part of the group store the synchronizer needs.
type GroupMembership interface {
	GetAllGroups() []models.Group
	AddEventToGroup(ctx context.Context, groupID string, eventID int64) bool
	RemoveEventFromGroup(ctx context.Context, groupID string, eventID int64) bool
}

// Synchronizer bridges the two stores through bus subscriptions.
type Synchronizer struct {
	events EventSource
	groups GroupMembership
	stop   []func()
}

// New creates a Synchronizer. Call Start to attach it to a bus.
func New(events EventSource, groups GroupMembership) *Synchronizer {
	return &Synchronizer{events: events, groups: groups}
}

// Start subscribes to membership intents and group deletions on b.
func (s *Synchronizer) Start(b *bus.Bus) {
	s.stop = append(s.stop,
		b.Subscribe(bus.KindAddEventToGroup, func(ctx context.Context, msg bus.Message) {
			m := msg.(bus.AddEventToGroup)
			slog.Debug("Adding event to group", "group_id", m.GroupID, "event_id", m.EventID)
			s.groups.AddEventToGroup(ctx, m.GroupID, m.EventID)
		}),
		b.Subscribe(bus.KindRemoveEventFromGroup, func(ctx context.Context, msg bus.Message) {
			m := msg.(bus.RemoveEventFromGroup)
			slog.Debug("Removing event from group", "group_id", m.GroupID, "event_id", m.EventID)
			s.groups.RemoveEventFromGroup(ctx, m.GroupID, m.EventID)
		}),
		b.Subscribe(bus.KindGroupDeleted, func(ctx context.Context, msg bus.Message) {
			m := msg.(bus.GroupDeleted)
			s.events.ClearGroup(ctx, m.GroupID)
		}),
	)
}

// Stop removes the subscriptions made by Start.
func (s *Synchronizer) Stop() {
	for _, cancel := range s.stop {
		cancel()
	}
	s.stop = nil
}

// Report summarizes the repairs made by Reconcile.
type Report struct {
	// ClearedReferences counts events whose GroupID named a missing group.
	ClearedReferences int `json:"clearedReferences"`
	// Added counts member IDs added to groups.
	Added int `json:"added"`
	// Removed counts member IDs dropped from groups.
	Removed int `json:"removed"`
}

// Changed reports whether Reconcile repaired anything.
func (r Report) Changed() bool {
	return r.ClearedReferences+r.Added+r.Removed > 0
}

// Reconcile makes both collections agree: event references to missing
// groups are cleared, then each group's membership is rewritten to the set
// of events that point at it.
func (s *Synchronizer) Reconcile(ctx context.Context) Report {
	var report Report

	groups := s.groups.GetAllGroups()
	known := make(map[string]bool, len(groups))
	for _, g := range groups {
		known[g.ID] = true
	}

	dangling := make(map[string]bool)
	for _, e := range s.events.GetAllEvents() {
		if e.GroupID != "" && !known[e.GroupID] {
			dangling[e.GroupID] = true
		}
	}
	for groupID := range dangling {
		report.ClearedReferences += s.events.ClearGroup(ctx, groupID)
	}

	want := make(map[string]map[int64]bool, len(groups))
	for _, e := range s.events.GetAllEvents() {
		if e.GroupID == "" {
			continue
		}
		if want[e.GroupID] == nil {
			want[e.GroupID] = make(map[int64]bool)
		}
		want[e.GroupID][e.ID] = true
	}

	for _, g := range groups {
		for _, id := range g.Events {
			if !want[g.ID][id] && s.groups.RemoveEventFromGroup(ctx, g.ID, id) {
				report.Removed++
			}
		}
		for id := range want[g.ID] {
			if !g.HasEvent(id) && s.groups.AddEventToGroup(ctx, g.ID, id) {
				report.Added++
			}
		}
	}

	if report.Changed() {
		slog.Info("Group membership reconciled",
			"cleared_references", report.ClearedReferences,
			"added", report.Added,
			"removed", report.Removed,
		)
	}
	return report
}
