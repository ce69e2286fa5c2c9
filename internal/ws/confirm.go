package ws

import (
	"sync"

	"letstalk/internal/models"
)

// ConfirmQueue hands out one-shot waits for confirmation events of a
// single kind. The server correlates confirmations by type only, so two
// concurrent sends of the same kind cannot be told apart by inspecting
// the event. The transport delivers frames in order and the server
// confirms in order of receipt, so the queue resolves waiters FIFO:
// each confirmation is claimed by exactly one waiter, the oldest.
//
// The queue holds a bus subscription only while waiters exist; once the
// last waiter is resolved or canceled it unsubscribes, so a late
// confirmation after a timeout is heard by nobody.
type ConfirmQueue struct {
	bus  *Bus
	kind models.Kind

	mu      sync.Mutex
	waiters []chan models.Frame
	subID   int
	subbed  bool
}

func NewConfirmQueue(bus *Bus, kind models.Kind) *ConfirmQueue {
	return &ConfirmQueue{bus: bus, kind: kind}
}

// Wait registers a one-shot waiter. The returned channel yields at most
// one frame. cancel releases the claim; it is safe to call after the
// frame arrived.
func (q *ConfirmQueue) Wait() (<-chan models.Frame, func()) {
	ch := make(chan models.Frame, 1)

	q.mu.Lock()
	q.waiters = append(q.waiters, ch)
	if !q.subbed {
		q.subID = q.bus.Subscribe(q.kind, q.dispatch)
		q.subbed = true
	}
	q.mu.Unlock()

	cancel := func() {
		q.mu.Lock()
		for i, w := range q.waiters {
			if w == ch {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				break
			}
		}
		q.unsubLocked()
		q.mu.Unlock()
	}
	return ch, cancel
}

func (q *ConfirmQueue) dispatch(frame models.Frame) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.waiters) == 0 {
		return
	}
	ch := q.waiters[0]
	q.waiters = q.waiters[1:]
	ch <- frame
	q.unsubLocked()
}

func (q *ConfirmQueue) unsubLocked() {
	if q.subbed && len(q.waiters) == 0 {
		q.bus.Unsubscribe(q.subID)
		q.subbed = false
	}
}

// Pending reports the number of outstanding waiters.
func (q *ConfirmQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.waiters)
}
