package store

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmynk/teamtime/internal/bus"
	"github.com/mmynk/teamtime/internal/metrics"
	"github.com/mmynk/teamtime/internal/models"
	"github.com/mmynk/teamtime/internal/storage"
)

// ErrDuplicateEvent is returned when adding an event whose ID is taken.
var ErrDuplicateEvent = errors.New("event already exists")

// EventStore owns the event collection.
//
// Query methods return snapshots; mutating a returned slice never affects
// the store. Group membership changes are not applied here: they are
// deferred on the bus as AddEventToGroup / RemoveEventFromGroup intents and
// take effect when the bus settles.
type EventStore struct {
	mu      sync.RWMutex
	events  []models.Event
	kv      storage.Store
	bus     *bus.Bus
	metrics *metrics.Metrics
}

// NewEventStore creates an EventStore and loads its contents from kv.
// m may be nil.
func NewEventStore(ctx context.Context, kv storage.Store, b *bus.Bus, m *metrics.Metrics) *EventStore {
	s := &EventStore{kv: kv, bus: b, metrics: m}

	events, found, err := loadList[models.Event](ctx, kv, storage.KeyEvents)
	switch {
	case err != nil:
		slog.Error("Failed to load events, starting empty", "error", err)
		m.StorageError(storage.KeyEvents, "read")
		events = nil
	case !found:
		slog.Info("No stored events found")
	default:
		slog.Info("Loaded events from storage", "count", len(events))
	}
	s.events = events
	reserveIDs(events)
	m.SetEvents(len(events))

	return s
}

// GetEventsByDate returns the events that fall on date.
// An invalid date yields an empty slice.
func (s *EventStore) GetEventsByDate(date models.Date) []models.Event {
	matching := []models.Event{}
	if !date.Valid() {
		slog.Warn("Invalid date provided to GetEventsByDate", "date", date.String())
		return matching
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.events {
		if e.Date.SameDay(date) {
			matching = append(matching, e)
		}
	}
	return matching
}

// GetAllEvents returns a snapshot of every event.
func (s *EventStore) GetAllEvents() []models.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// GetEvent looks an event up by ID.
func (s *EventStore) GetEvent(id int64) (models.Event, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.indexOf(id); i >= 0 {
		return s.events[i], true
	}
	return models.Event{}, false
}

// AddEvent stores e, assigning an ID when e.ID is zero, and returns the
// stored record. If e belongs to a group, an AddEventToGroup intent is
// deferred.
func (s *EventStore) AddEvent(ctx context.Context, e models.Event) (models.Event, error) {
	s.mu.Lock()
	if e.ID == 0 {
		e.ID = models.NewEventID()
		for s.indexOf(e.ID) >= 0 {
			e.ID = models.NewEventID()
		}
	} else if s.indexOf(e.ID) >= 0 {
		s.mu.Unlock()
		return models.Event{}, ErrDuplicateEvent
	}

	s.events = append(s.events, e)
	models.ReserveEventIDs(e.ID)
	s.persist(ctx)
	changed := s.changedLocked()
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyEvents, "add")
	slog.Debug("Event added", "event_id", e.ID, "group_id", e.GroupID)
	s.bus.Publish(ctx, changed)

	if e.GroupID != "" {
		s.bus.Defer(bus.AddEventToGroup{GroupID: e.GroupID, EventID: e.ID})
	}
	return e, nil
}

// UpdateEvent replaces the stored event with the same ID. It reports false
// when no such event exists. When the group changes, a remove intent for
// the old group and an add intent for the new one are deferred; an edit
// that keeps the group defers nothing.
func (s *EventStore) UpdateEvent(ctx context.Context, e models.Event) bool {
	s.mu.Lock()
	i := s.indexOf(e.ID)
	if i < 0 {
		s.mu.Unlock()
		return false
	}

	old := s.events[i]
	if old.GroupID != e.GroupID {
		if old.GroupID != "" {
			s.bus.Defer(bus.RemoveEventFromGroup{GroupID: old.GroupID, EventID: old.ID})
		}
		if e.GroupID != "" {
			s.bus.Defer(bus.AddEventToGroup{GroupID: e.GroupID, EventID: e.ID})
		}
	}

	s.events[i] = e
	s.persist(ctx)
	changed := s.changedLocked()
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyEvents, "update")
	slog.Debug("Event updated", "event_id", e.ID, "old_group_id", old.GroupID, "group_id", e.GroupID)
	s.bus.Publish(ctx, changed)
	return true
}

// DeleteEvent removes the event with the given ID and reports whether it
// existed. A grouped event also gets a RemoveEventFromGroup intent.
func (s *EventStore) DeleteEvent(ctx context.Context, id int64) bool {
	s.mu.Lock()
	i := s.indexOf(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}

	old := s.events[i]
	s.events = slices.Delete(s.events, i, i+1)
	if old.GroupID != "" {
		s.bus.Defer(bus.RemoveEventFromGroup{GroupID: old.GroupID, EventID: old.ID})
	}
	s.persist(ctx)
	changed := s.changedLocked()
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyEvents, "delete")
	slog.Debug("Event deleted", "event_id", id)
	s.bus.Publish(ctx, changed)
	return true
}

// ClearGroup drops groupID from every event that references it and returns
// the number of events changed. No membership intents are emitted.
func (s *EventStore) ClearGroup(ctx context.Context, groupID string) int {
	if groupID == "" {
		return 0
	}

	s.mu.Lock()
	cleared := 0
	for i := range s.events {
		if s.events[i].GroupID == groupID {
			s.events[i].GroupID = ""
			cleared++
		}
	}
	if cleared == 0 {
		s.mu.Unlock()
		return 0
	}
	s.persist(ctx)
	changed := s.changedLocked()
	s.mu.Unlock()

	s.metrics.Mutation(storage.KeyEvents, "clear_group")
	slog.Info("Cleared group from events", "group_id", groupID, "count", cleared)
	s.bus.Publish(ctx, changed)
	return cleared
}

// Reload discards the in-memory list and rereads storage. It reports false,
// keeping the current list, when storage holds nothing or cannot be read.
func (s *EventStore) Reload(ctx context.Context) bool {
	events, found, err := loadList[models.Event](ctx, s.kv, storage.KeyEvents)
	if err != nil {
		slog.Error("Failed to reload events", "error", err)
		s.metrics.StorageError(storage.KeyEvents, "read")
		return false
	}
	if !found {
		return false
	}

	reserveIDs(events)

	s.mu.Lock()
	s.events = events
	changed := s.changedLocked()
	s.mu.Unlock()

	s.metrics.SetEvents(len(events))
	slog.Info("Events reloaded from storage", "count", len(events))
	s.bus.Publish(ctx, changed)
	return true
}

// persist writes the list to storage. Callers hold s.mu.
func (s *EventStore) persist(ctx context.Context) {
	s.metrics.SetEvents(len(s.events))
	if err := saveList(ctx, s.kv, storage.KeyEvents, s.events); err != nil {
		slog.Error("Failed to save events", "error", err)
		s.metrics.StorageError(storage.KeyEvents, "write")
	}
}

// changedLocked builds the EventsChanged notification. Callers hold s.mu.
func (s *EventStore) changedLocked() bus.EventsChanged {
	events := s.snapshot()
	return bus.EventsChanged{
		Events:        events,
		EventsByGroup: models.GroupEventsByGroup(events),
	}
}

func (s *EventStore) snapshot() []models.Event {
	out := slices.Clone(s.events)
	if out == nil {
		out = []models.Event{}
	}
	return out
}

func (s *EventStore) indexOf(id int64) int {
	return slices.IndexFunc(s.events, func(e models.Event) bool { return e.ID == id })
}

// reserveIDs keeps generated IDs clear of the ones already stored.
func reserveIDs(events []models.Event) {
	var highest int64
	for _, e := range events {
		highest = max(highest, e.ID)
	}
	models.ReserveEventIDs(highest)
}
