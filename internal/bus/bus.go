// Package bus is the in-process notification bus that decouples the event
// store, the group store and their readers.
//
// Publish delivers synchronously, in subscription order. Defer queues a
// message for a later turn; Settle runs turns until nothing is queued.
// Handlers that publish or defer while being delivered to are allowed.
package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Handler receives a message. Handlers must not block.
type Handler func(ctx context.Context, msg Message)

// kindAll subscribes a handler to every kind.
const kindAll Kind = 0

type subscription struct {
	id      uint64
	kind    Kind
	handler Handler
}

// Bus is a typed publish/subscribe registry with a deferred-message queue.
type Bus struct {
	mu       sync.Mutex
	nextID   uint64
	subs     []subscription
	pending  []Message
	settling bool
}

// New creates an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers h for messages of kind k. The returned function
// removes the subscription; calling it more than once is harmless.
func (b *Bus) Subscribe(k Kind, h Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscription{id: id, kind: k, handler: h})

	return func() { b.unsubscribe(id) }
}

// SubscribeAll registers h for every message kind.
func (b *Bus) SubscribeAll(h Handler) func() {
	return b.Subscribe(kindAll, h)
}

func (b *Bus) unsubscribe(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.subs {
		if s.id == id {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Publish delivers msg to the current subscribers before returning.
func (b *Bus) Publish(ctx context.Context, msg Message) {
	b.mu.Lock()
	handlers := make([]Handler, 0, len(b.subs))
	for _, s := range b.subs {
		if s.kind == kindAll || s.kind == msg.Kind() {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		deliver(ctx, h, msg)
	}
}

// Defer queues msg for delivery on the next Settle turn.
func (b *Bus) Defer(msg Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, msg)
}

// Pending returns the number of queued messages.
func (b *Bus) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Settle delivers queued messages turn by turn until the queue is empty or
// ctx is done. Messages deferred during a turn are delivered in the next
// one. It returns the number of messages delivered. A nested call made
// from inside a handler returns 0 immediately; the outer call drains.
func (b *Bus) Settle(ctx context.Context) int {
	b.mu.Lock()
	if b.settling {
		b.mu.Unlock()
		return 0
	}
	b.settling = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.settling = false
		b.mu.Unlock()
	}()

	delivered := 0
	for {
		if ctx.Err() != nil {
			return delivered
		}

		b.mu.Lock()
		turn := b.pending
		b.pending = nil
		b.mu.Unlock()

		if len(turn) == 0 {
			return delivered
		}
		for _, msg := range turn {
			b.Publish(ctx, msg)
			delivered++
		}
	}
}

func deliver(ctx context.Context, h Handler, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Bus handler panicked",
				"kind", msg.Kind().String(),
				"panic", fmt.Sprint(r),
			)
		}
	}()
	h(ctx, msg)
}
