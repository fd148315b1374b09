package app

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mmynk/teamtime/internal/bus"
	"github.com/mmynk/teamtime/internal/metrics"
	"github.com/mmynk/teamtime/internal/models"
	"github.com/mmynk/teamtime/internal/storage"
	"github.com/mmynk/teamtime/internal/storage/memory"
	"github.com/mmynk/teamtime/internal/storage/sqlite"
)

func newTestApp(t *testing.T) (*App, storage.Store) {
	t.Helper()
	kv := memory.New()
	a := New(context.Background(), kv, metrics.New(prometheus.NewRegistry()))
	t.Cleanup(a.Close)
	return a, kv
}

func standup(groupID string) models.Event {
	return models.Event{
		Title:     "Standup",
		Date:      models.NewDate(2024, time.May, 1),
		StartTime: 540,
		EndTime:   570,
		GroupID:   groupID,
	}
}

func TestCreateEventValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)

	tests := []struct {
		name    string
		start   int
		end     int
		wantErr error
	}{
		{"empty range", 600, 600, models.ErrInvalidTimeRange},
		{"reversed range", 600, 540, models.ErrInvalidTimeRange},
		{"all day", 0, 1440, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := standup("")
			e.StartTime, e.EndTime = tt.start, tt.end

			created, err := a.CreateEvent(ctx, e)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if tt.wantErr == nil && !models.IsAllDay(created) {
				t.Error("expected all-day classification")
			}
		})
	}

	if n := len(a.Events.GetAllEvents()); n != 1 {
		t.Errorf("rejected events changed state: %d stored", n)
	}
}

func TestCreateEventRequiresExistingGroup(t *testing.T) {
	a, _ := newTestApp(t)

	_, err := a.CreateEvent(context.Background(), standup("nope"))
	if !errors.Is(err, ErrUnknownGroup) {
		t.Errorf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestScenarioConvergesWithinOneCall(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)

	g1, err := a.CreateGroup(ctx, "Work", "#FF0000")
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	e, err := a.CreateEvent(ctx, standup(g1.ID))
	if err != nil {
		t.Fatalf("CreateEvent failed: %v", err)
	}

	g, _ := a.Groups.GetGroup(g1.ID)
	if !slices.Equal(g.Events, []int64{e.ID}) {
		t.Errorf("expected [%d], got %v", e.ID, g.Events)
	}

	e.GroupID = ""
	if err := a.EditEvent(ctx, e); err != nil {
		t.Fatalf("EditEvent failed: %v", err)
	}
	g, _ = a.Groups.GetGroup(g1.ID)
	if len(g.Events) != 0 {
		t.Errorf("expected [], got %v", g.Events)
	}
}

func TestEditAndDeleteUnknownEvent(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)

	e := standup("")
	e.ID = 1
	if err := a.EditEvent(ctx, e); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("edit: expected ErrEventNotFound, got %v", err)
	}
	if err := a.DeleteEvent(ctx, 1); !errors.Is(err, ErrEventNotFound) {
		t.Errorf("delete: expected ErrEventNotFound, got %v", err)
	}
}

func TestGroupValidation(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)

	if _, err := a.CreateGroup(ctx, "Work", "red"); !errors.Is(err, models.ErrInvalidGroupColor) {
		t.Errorf("expected ErrInvalidGroupColor, got %v", err)
	}
	if _, err := a.UpdateGroup(ctx, models.Group{ID: "x", Name: "Work", Color: "#FF0000"}); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
	if err := a.DeleteGroup(ctx, "x"); !errors.Is(err, ErrGroupNotFound) {
		t.Errorf("expected ErrGroupNotFound, got %v", err)
	}
}

func TestDeleteGroupClearsEvents(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)

	g, _ := a.CreateGroup(ctx, "Work", "#FF0000")
	e, _ := a.CreateEvent(ctx, standup(g.ID))

	if err := a.DeleteGroup(ctx, g.ID); err != nil {
		t.Fatalf("DeleteGroup failed: %v", err)
	}
	stored, _ := a.Events.GetEvent(e.ID)
	if stored.GroupID != "" {
		t.Errorf("expected group cleared, got %q", stored.GroupID)
	}
	if a.GroupOf(stored) != nil {
		t.Error("expected no group for event")
	}
}

func TestIntentsThroughDispatch(t *testing.T) {
	ctx := context.Background()
	a, _ := newTestApp(t)

	var notes []bus.Notification
	a.Bus.Subscribe(bus.KindNotification, func(ctx context.Context, msg bus.Message) {
		notes = append(notes, msg.(bus.Notification))
	})

	g, _ := a.CreateGroup(ctx, "Work", "#FF0000")
	a.Dispatch(ctx, bus.EventCreate{Event: standup(g.ID)})

	all := a.Events.GetAllEvents()
	if len(all) != 1 {
		t.Fatalf("expected 1 event, got %d", len(all))
	}
	if got, _ := a.Groups.GetGroup(g.ID); !got.HasEvent(all[0].ID) {
		t.Error("group membership not updated by dispatched create")
	}

	bad := all[0]
	bad.EndTime = bad.StartTime
	a.Dispatch(ctx, bus.EventEdit{Event: bad})
	if len(notes) != 1 || notes[0].Level != bus.LevelError {
		t.Errorf("expected one error notification, got %+v", notes)
	}

	a.Dispatch(ctx, bus.EventDelete{Event: all[0]})
	if n := len(a.Events.GetAllEvents()); n != 0 {
		t.Errorf("expected 0 events, got %d", n)
	}
	if got, _ := a.Groups.GetGroup(g.ID); len(got.Events) != 0 {
		t.Errorf("expected empty membership, got %v", got.Events)
	}
}

func TestVisibilityChangeReloads(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()

	first := New(ctx, kv, nil)
	defer first.Close()
	second := New(ctx, kv, nil)
	defer second.Close()

	g, _ := first.CreateGroup(ctx, "Work", "#FF0000")
	first.CreateEvent(ctx, standup(g.ID))

	if len(second.Groups.GetAllGroups()) != 0 {
		t.Fatal("second app saw the group before reloading")
	}

	second.Dispatch(ctx, bus.VisibilityChange{Visible: false})
	if len(second.Groups.GetAllGroups()) != 0 {
		t.Fatal("hidden visibility change should not reload")
	}

	second.Dispatch(ctx, bus.VisibilityChange{Visible: true})
	if len(second.Groups.GetAllGroups()) != 1 || len(second.Events.GetAllEvents()) != 1 {
		t.Error("expected both collections reloaded")
	}
}

func TestNewReconcilesStoredData(t *testing.T) {
	ctx := context.Background()
	kv := memory.New()
	kv.Set(ctx, storage.KeyEvents, []byte(`[{"id":1,"title":"a","date":"2024-05-01","startTime":0,"endTime":60,"groupId":"g1"}]`))
	kv.Set(ctx, storage.KeyGroups, []byte(`[{"id":"g1","name":"Work","color":"#FF0000","events":[]}]`))

	a := New(ctx, kv, nil)
	defer a.Close()

	g, _ := a.Groups.GetGroup("g1")
	if !slices.Equal(g.Events, []int64{1}) {
		t.Errorf("expected startup reconciliation to add event 1, got %v", g.Events)
	}
}

func TestPersistsAcrossRestartWithSQLite(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "teamtime.db")

	kv, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	a := New(ctx, kv, nil)
	g, _ := a.CreateGroup(ctx, "Work", "#FF0000")
	e, _ := a.CreateEvent(ctx, standup(g.ID))
	a.Close()
	kv.Close()

	kv, err = sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer kv.Close()
	b := New(ctx, kv, nil)
	defer b.Close()

	got := b.Events.GetEventsByDate(models.NewDate(2024, time.May, 1))
	if len(got) != 1 || got[0].ID != e.ID {
		t.Fatalf("expected event %d after restart, got %+v", e.ID, got)
	}
	if stored, _ := b.Groups.GetGroup(g.ID); !stored.HasEvent(e.ID) {
		t.Error("membership lost across restart")
	}
}

func TestCancelledContextStillConverges(t *testing.T) {
	t.Run("memory", func(t *testing.T) {
		a, _ := newTestApp(t)

		g, err := a.CreateGroup(context.Background(), "Work", "#FF0000")
		if err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		e, err := a.CreateEvent(ctx, standup(g.ID))
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}
		if n := a.Bus.Pending(); n != 0 {
			t.Errorf("expected an empty queue, %d messages pending", n)
		}
		if stored, _ := a.Groups.GetGroup(g.ID); !slices.Equal(stored.Events, []int64{e.ID}) {
			t.Errorf("expected [%d], got %v", e.ID, stored.Events)
		}
	})

	t.Run("sqlite", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "teamtime.db")
		kv, err := sqlite.New(dbPath)
		if err != nil {
			t.Fatalf("failed to create store: %v", err)
		}
		defer kv.Close()

		a := New(context.Background(), kv, nil)
		defer a.Close()
		g, _ := a.CreateGroup(context.Background(), "Work", "#FF0000")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		e, err := a.CreateEvent(ctx, standup(g.ID))
		if err != nil {
			t.Fatalf("CreateEvent failed: %v", err)
		}

		data, ok, err := kv.Get(context.Background(), storage.KeyGroups)
		if err != nil || !ok {
			t.Fatalf("failed to read groups: ok=%v err=%v", ok, err)
		}
		var groups []models.Group
		if err := json.Unmarshal(data, &groups); err != nil {
			t.Fatalf("failed to decode groups: %v", err)
		}
		if len(groups) != 1 || !groups[0].HasEvent(e.ID) {
			t.Errorf("membership was not persisted under a cancelled context: %+v", groups)
		}

		reopened := New(context.Background(), kv, nil)
		defer reopened.Close()
		if _, ok := reopened.Events.GetEvent(e.ID); !ok {
			t.Error("event was not persisted under a cancelled context")
		}
	})
}
