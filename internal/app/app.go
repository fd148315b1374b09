// Package app wires the bus, the stores and the synchronizer together and
// turns user intents into store mutations.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mmynk/teamtime/internal/bus"
	"github.com/mmynk/teamtime/internal/membership"
	"github.com/mmynk/teamtime/internal/metrics"
	"github.com/mmynk/teamtime/internal/models"
	"github.com/mmynk/teamtime/internal/storage"
	"github.com/mmynk/teamtime/internal/store"
)

var (
	// ErrUnknownGroup is returned when an event names a group that does not exist.
	ErrUnknownGroup = errors.New("group does not exist")
	// ErrEventNotFound is returned when editing or deleting an unknown event.
	ErrEventNotFound = errors.New("event not found")
	// ErrGroupNotFound is returned when updating or deleting an unknown group.
	ErrGroupNotFound = store.ErrGroupNotFound
)

// App is the calendar engine. Build one per storage backend with New and
// share it; it holds no package-level state.
//
// Every public method runs as one turn: it holds the turn lock, performs
// the mutation, then settles the bus so that membership has converged
// before it returns. A turn ignores cancellation of the caller's context
// once it has started.
type App struct {
	turn sync.Mutex

	Bus    *bus.Bus
	Events *store.EventStore
	Groups *store.GroupStore
	Sync   *membership.Synchronizer

	stop []func()
}

// New loads both stores from kv, starts the synchronizer and subscribes to
// the intent notifications. A reconciliation pass runs before it returns.
// m may be nil.
func New(ctx context.Context, kv storage.Store, m *metrics.Metrics) *App {
	ctx = detach(ctx)
	b := bus.New()
	a := &App{
		Bus:    b,
		Events: store.NewEventStore(ctx, kv, b, m),
		Groups: store.NewGroupStore(ctx, kv, b, m),
	}
	a.Sync = membership.New(a.Events, a.Groups)
	a.Sync.Start(b)
	a.stop = append(a.stop, m.Observe(b))
	a.subscribe()

	a.turn.Lock()
	a.Sync.Reconcile(ctx)
	b.Settle(ctx)
	a.turn.Unlock()

	slog.Info("Calendar initialized",
		"events", len(a.Events.GetAllEvents()),
		"groups", len(a.Groups.GetAllGroups()),
	)
	return a
}

// Close detaches every subscription made by New.
func (a *App) Close() {
	a.Sync.Stop()
	for _, cancel := range a.stop {
		cancel()
	}
	a.stop = nil
}

func (a *App) subscribe() {
	a.stop = append(a.stop,
		a.Bus.Subscribe(bus.KindEventCreate, func(ctx context.Context, msg bus.Message) {
			if _, err := a.createEvent(ctx, msg.(bus.EventCreate).Event); err != nil {
				a.notifyError(ctx, "event-create", err)
			}
		}),
		a.Bus.Subscribe(bus.KindEventEdit, func(ctx context.Context, msg bus.Message) {
			if err := a.editEvent(ctx, msg.(bus.EventEdit).Event); err != nil {
				a.notifyError(ctx, "event-edit", err)
			}
		}),
		a.Bus.Subscribe(bus.KindEventDelete, func(ctx context.Context, msg bus.Message) {
			if err := a.deleteEvent(ctx, msg.(bus.EventDelete).Event.ID); err != nil {
				a.notifyError(ctx, "event-delete", err)
			}
		}),
		a.Bus.Subscribe(bus.KindVisibilityChange, func(ctx context.Context, msg bus.Message) {
			if msg.(bus.VisibilityChange).Visible {
				a.reload(ctx)
			}
		}),
	)
}

// Dispatch publishes msg as one turn and settles the bus.
func (a *App) Dispatch(ctx context.Context, msg bus.Message) {
	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()

	a.Bus.Publish(ctx, msg)
	a.Bus.Settle(ctx)
}

// CreateEvent validates e and stores it.
func (a *App) CreateEvent(ctx context.Context, e models.Event) (models.Event, error) {
	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	return a.createEvent(ctx, e)
}

// EditEvent validates e and replaces the stored event with the same ID.
func (a *App) EditEvent(ctx context.Context, e models.Event) error {
	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	return a.editEvent(ctx, e)
}

// DeleteEvent removes an event.
func (a *App) DeleteEvent(ctx context.Context, id int64) error {
	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	return a.deleteEvent(ctx, id)
}

// CreateGroup validates and stores a new group.
func (a *App) CreateGroup(ctx context.Context, name, color string) (models.Group, error) {
	if err := models.ValidateGroup(name, color); err != nil {
		return models.Group{}, err
	}

	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	return a.Groups.CreateGroup(ctx, name, color)
}

// UpdateGroup validates and renames or recolors a group.
func (a *App) UpdateGroup(ctx context.Context, g models.Group) (models.Group, error) {
	if err := models.ValidateGroup(g.Name, g.Color); err != nil {
		return models.Group{}, err
	}

	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	return a.Groups.UpdateGroup(ctx, g)
}

// DeleteGroup removes a group; events that referenced it lose their group.
func (a *App) DeleteGroup(ctx context.Context, id string) error {
	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	if !a.Groups.DeleteGroup(ctx, id) {
		return ErrGroupNotFound
	}
	return nil
}

// Reconcile runs a full membership reconciliation pass.
func (a *App) Reconcile(ctx context.Context) membership.Report {
	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	return a.Sync.Reconcile(ctx)
}

// Reload rereads both collections from storage and reconciles them. It is
// what becoming visible again triggers.
func (a *App) Reload(ctx context.Context) {
	ctx = detach(ctx)
	a.turn.Lock()
	defer a.turn.Unlock()
	defer a.Bus.Settle(ctx)

	a.reload(ctx)
}

// GroupOf returns the group e belongs to, if any.
func (a *App) GroupOf(e models.Event) *models.Group {
	if e.GroupID == "" {
		return nil
	}
	g, ok := a.Groups.GetGroup(e.GroupID)
	if !ok {
		return nil
	}
	return &g
}

// detach keeps the caller's values but drops its cancellation, so a turn
// that has begun always persists and settles completely.
func detach(ctx context.Context) context.Context {
	return context.WithoutCancel(ctx)
}

func (a *App) createEvent(ctx context.Context, e models.Event) (models.Event, error) {
	if err := a.validateEvent(e); err != nil {
		return models.Event{}, err
	}
	return a.Events.AddEvent(ctx, e)
}

func (a *App) editEvent(ctx context.Context, e models.Event) error {
	if err := a.validateEvent(e); err != nil {
		return err
	}
	if !a.Events.UpdateEvent(ctx, e) {
		return fmt.Errorf("%w: %d", ErrEventNotFound, e.ID)
	}
	return nil
}

func (a *App) deleteEvent(ctx context.Context, id int64) error {
	if !a.Events.DeleteEvent(ctx, id) {
		return fmt.Errorf("%w: %d", ErrEventNotFound, id)
	}
	return nil
}

func (a *App) reload(ctx context.Context) {
	a.Events.Reload(ctx)
	a.Groups.Reload(ctx)
	a.Sync.Reconcile(ctx)
}

func (a *App) validateEvent(e models.Event) error {
	if err := models.ValidateEvent(e); err != nil {
		return err
	}
	if e.GroupID != "" {
		if _, ok := a.Groups.GetGroup(e.GroupID); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownGroup, e.GroupID)
		}
	}
	return nil
}

// notifyError surfaces a failed intent to the user.
func (a *App) notifyError(ctx context.Context, intent string, err error) {
	slog.Warn("Intent rejected", "intent", intent, "error", err)
	a.Bus.Publish(ctx, bus.Notification{Level: bus.LevelError, Text: err.Error()})
}
