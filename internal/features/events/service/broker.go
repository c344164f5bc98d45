package service

import (
	"sync"
	"time"

	"dispatch-board/internal/core/logger"
	assignment "dispatch-board/internal/features/assignment/domain"

	"go.uber.org/zap"
)

// Event is the wire representation of an assignment change pushed to
// connected consoles.
type Event struct {
	// Type is the change reason: move, rollback or reload.
	Type string `json:"type"`
	// Item is the item that moved, absent on reloads.
	Item *assignment.ItemRef `json:"item,omitempty"`
	// At is when the change was observed.
	At time.Time `json:"at"`
}

// Broker fans assignment change events out to SSE subscribers. Subscriber
// channels are buffered; a consumer that cannot keep up loses events rather
// than blocking the publisher.
type Broker struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroker creates an empty broker.
func NewBroker() *Broker {
	return &Broker{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a new consumer and returns its event channel.
func (b *Broker) Subscribe() chan Event {
	ch := make(chan Event, 8)

	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	return ch
}

// Unsubscribe removes a consumer and closes its channel.
func (b *Broker) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
	b.mu.Unlock()
}

// Publish delivers an event to every subscriber without blocking.
func (b *Broker) Publish(evt Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			logger.Get().Debug("Dropping event for slow subscriber",
				zap.String("type", evt.Type),
			)
		}
	}
}

// Subscribers returns the current consumer count.
func (b *Broker) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// AssignmentsChanged implements the assignment listener contract by
// translating store change events into wire events.
func (b *Broker) AssignmentsChanged(event assignment.ChangeEvent) {
	b.Publish(Event{
		Type: string(event.Reason),
		Item: event.Item,
		At:   time.Now(),
	})
}
