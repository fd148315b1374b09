package bus

import (
	"context"
	"testing"

	"github.com/mmynk/teamtime/internal/models"
)

func TestPublishDeliversToMatchingKind(t *testing.T) {
	b := New()
	ctx := context.Background()

	var got []string
	b.Subscribe(KindViewChange, func(ctx context.Context, msg Message) {
		got = append(got, "view:"+msg.(ViewChange).View)
	})
	b.Subscribe(KindDateChange, func(ctx context.Context, msg Message) {
		got = append(got, "date")
	})

	b.Publish(ctx, ViewChange{View: "week"})

	if len(got) != 1 || got[0] != "view:week" {
		t.Errorf("expected [view:week], got %v", got)
	}
}

func TestPublishOrderAndSubscribeAll(t *testing.T) {
	b := New()
	ctx := context.Background()

	var order []int
	b.Subscribe(KindDataChanged, func(ctx context.Context, msg Message) { order = append(order, 1) })
	b.SubscribeAll(func(ctx context.Context, msg Message) { order = append(order, 2) })
	b.Subscribe(KindDataChanged, func(ctx context.Context, msg Message) { order = append(order, 3) })

	b.Publish(ctx, DataChanged{})

	if len(order) != 3 || order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Errorf("expected [1 2 3], got %v", order)
	}
}

func TestUnsubscribe(t *testing.T) {
	b := New()
	ctx := context.Background()

	count := 0
	cancel := b.Subscribe(KindDataChanged, func(ctx context.Context, msg Message) { count++ })

	b.Publish(ctx, DataChanged{})
	cancel()
	cancel()
	b.Publish(ctx, DataChanged{})

	if count != 1 {
		t.Errorf("expected 1 delivery, got %d", count)
	}
}

func TestDeferWaitsForSettle(t *testing.T) {
	b := New()
	ctx := context.Background()

	b.Defer(GroupsChanged{})

	// A subscriber registered after Defer but before Settle still receives it.
	received := 0
	b.Subscribe(KindGroupsChanged, func(ctx context.Context, msg Message) { received++ })

	if received != 0 {
		t.Fatal("deferred message delivered before Settle")
	}
	if n := b.Pending(); n != 1 {
		t.Errorf("expected 1 pending, got %d", n)
	}

	if n := b.Settle(ctx); n != 1 {
		t.Errorf("expected 1 delivered, got %d", n)
	}
	if received != 1 {
		t.Errorf("expected 1 delivery, got %d", received)
	}
	if n := b.Pending(); n != 0 {
		t.Errorf("expected empty queue, got %d", n)
	}
}

func TestSettleRunsFollowUpTurns(t *testing.T) {
	b := New()
	ctx := context.Background()

	var seen []Kind
	b.SubscribeAll(func(ctx context.Context, msg Message) {
		seen = append(seen, msg.Kind())
		if msg.Kind() == KindAddEventToGroup {
			b.Defer(GroupsChanged{})
			// Nested Settle is a no-op; the outer loop picks the message up.
			if n := b.Settle(ctx); n != 0 {
				t.Errorf("nested Settle delivered %d", n)
			}
		}
	})

	b.Defer(AddEventToGroup{GroupID: "g1", EventID: 1})
	b.Defer(DataChanged{})

	if n := b.Settle(ctx); n != 3 {
		t.Errorf("expected 3 delivered, got %d", n)
	}

	want := []Kind{KindAddEventToGroup, KindDataChanged, KindGroupsChanged}
	if len(seen) != len(want) {
		t.Fatalf("expected %v, got %v", want, seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("turn order: expected %v, got %v", want, seen)
			break
		}
	}
}

func TestSettleStopsOnCancelledContext(t *testing.T) {
	b := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b.Defer(DataChanged{})
	if n := b.Settle(ctx); n != 0 {
		t.Errorf("expected 0 delivered, got %d", n)
	}
	if n := b.Pending(); n != 1 {
		t.Errorf("expected message to stay queued, got %d pending", n)
	}
}

func TestPanickingHandlerIsContained(t *testing.T) {
	b := New()
	ctx := context.Background()

	after := false
	b.Subscribe(KindEventClick, func(ctx context.Context, msg Message) { panic("boom") })
	b.Subscribe(KindEventClick, func(ctx context.Context, msg Message) { after = true })

	b.Publish(ctx, EventClick{Event: models.Event{ID: 1}})

	if !after {
		t.Error("handler after the panicking one was not called")
	}
}

func TestKindNames(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindEventsChanged, "events-change"},
		{KindGroupsChanged, "groups-changed"},
		{KindAddEventToGroup, "add-event-to-group"},
		{KindRemoveEventFromGroup, "remove-event-from-group"},
		{KindDeviceTypeChange, "device-type-change"},
		{Kind(999), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.kind.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.kind, got, tt.want)
		}
	}
}
