package ws

import (
	"log/slog"
	"sync"

	"letstalk/internal/models"
)

// Handler receives one normalized inbound frame.
type Handler func(frame models.Frame)

// KindAny subscribes a handler to every inbound frame regardless of kind.
const KindAny models.Kind = ""

type subscriber struct {
	id   int
	kind models.Kind
	fn   Handler
}

// Bus is a type-keyed publish-subscribe registry over the inbound frame
// stream. Subscribers only ever see kinds they asked for, so ignoring
// unknown message types is structural rather than a per-consumer
// obligation. Delivery of one frame to one subscriber is isolated: a
// panicking handler is logged and the remaining subscribers still hear
// the frame.
type Bus struct {
	subs   map[models.Kind][]*subscriber
	lastID int
	mu     sync.RWMutex
}

func NewBus() *Bus {
	return &Bus{subs: make(map[models.Kind][]*subscriber)}
}

// Subscribe registers fn for frames of the given kind and returns an id
// for Unsubscribe. Pass KindAny to hear everything.
func (b *Bus) Subscribe(kind models.Kind, fn Handler) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.lastID++
	b.subs[kind] = append(b.subs[kind], &subscriber{
		id:   b.lastID,
		kind: kind,
		fn:   fn,
	})
	return b.lastID
}

// Unsubscribe removes the subscriber with the given id. Unknown ids are
// a no-op, so double-unsubscribe on teardown paths is safe.
func (b *Bus) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for kind, list := range b.subs {
		for i, s := range list {
			if s.id == id {
				b.subs[kind] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// Publish delivers the frame to all subscribers of its kind and to all
// wildcard subscribers.
func (b *Bus) Publish(frame models.Frame) {
	b.mu.RLock()
	matched := make([]*subscriber, 0,
		len(b.subs[frame.Type])+len(b.subs[KindAny]))
	matched = append(matched, b.subs[frame.Type]...)
	matched = append(matched, b.subs[KindAny]...)
	b.mu.RUnlock()

	for _, s := range matched {
		deliver(s, frame)
	}
}

func deliver(s *subscriber, frame models.Frame) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("frame handler panicked",
				"kind", frame.Type, "subscriber", s.id, "panic", r)
		}
	}()
	s.fn(frame)
}
