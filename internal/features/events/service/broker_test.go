package service

import (
	"testing"

	assignment "dispatch-board/internal/features/assignment/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestBroker_PublishFanOut verifies every subscriber receives the event.
func TestBroker_PublishFanOut(t *testing.T) {
	broker := NewBroker()
	a := broker.Subscribe()
	b := broker.Subscribe()
	assert.Equal(t, 2, broker.Subscribers())

	broker.Publish(Event{Type: "move"})

	evtA := <-a
	evtB := <-b
	assert.Equal(t, "move", evtA.Type)
	assert.Equal(t, "move", evtB.Type)
}

// TestBroker_SlowSubscriberDropsEvents verifies publishing never blocks.
func TestBroker_SlowSubscriberDropsEvents(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()

	// Fill the buffer and keep going; the extra events must be dropped
	// without blocking this goroutine.
	for i := 0; i < 20; i++ {
		broker.Publish(Event{Type: "move"})
	}

	assert.Len(t, ch, cap(ch))
}

// TestBroker_Unsubscribe verifies the channel closes and fan-out stops.
func TestBroker_Unsubscribe(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()

	broker.Unsubscribe(ch)
	assert.Equal(t, 0, broker.Subscribers())

	_, open := <-ch
	assert.False(t, open)

	// A second unsubscribe of the same channel must not panic.
	broker.Unsubscribe(ch)
}

// TestBroker_AssignmentsChanged verifies store events translate to wire events.
func TestBroker_AssignmentsChanged(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()

	ref := assignment.ItemRef{Kind: assignment.ItemKindOrder, ID: "o1"}
	broker.AssignmentsChanged(assignment.ChangeEvent{
		Reason: assignment.ChangeReasonRollback,
		Item:   &ref,
	})

	evt := <-ch
	assert.Equal(t, "rollback", evt.Type)
	require.NotNil(t, evt.Item)
	assert.Equal(t, "o1", evt.Item.ID)
	assert.False(t, evt.At.IsZero())
}

// TestBroker_ReloadHasNoItem verifies reload events carry no item ref.
func TestBroker_ReloadHasNoItem(t *testing.T) {
	broker := NewBroker()
	ch := broker.Subscribe()

	broker.AssignmentsChanged(assignment.ChangeEvent{
		Reason: assignment.ChangeReasonReload,
	})

	evt := <-ch
	assert.Equal(t, "reload", evt.Type)
	assert.Nil(t, evt.Item)
}
