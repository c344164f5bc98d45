package domain

import (
	"time"

	assignment "dispatch-board/internal/features/assignment/domain"
)

// Phase is the drag coordinator's state machine phase.
type Phase string

const (
	// PhaseIdle means no drag gesture is active.
	PhaseIdle Phase = "idle"
	// PhaseDragging means an item is picked up with no compatible target hovered.
	PhaseDragging Phase = "dragging"
	// PhaseHovering means the pointer is over a compatible drop target.
	PhaseHovering Phase = "hovering"
)

// Session is the ephemeral state of one drag gesture. It is created on
// pointer-down over a draggable item and destroyed on release or
// cancellation; it is never persisted.
type Session struct {
	// ID is the gesture identifier handed back to the frontend.
	ID string `json:"id"`
	// Item is the picked-up item.
	Item assignment.ItemRef `json:"item"`
	// Origin is the container the item was picked up from.
	Origin TargetID `json:"origin"`
	// Hovered is the currently hovered compatible target, nil while plain
	// dragging.
	Hovered *TargetID `json:"hovered,omitempty"`
	// StartedAt is when the gesture began.
	StartedAt time.Time `json:"started_at"`
}

// Phase derives the state machine phase from the session shape.
func (s *Session) Phase() Phase {
	if s == nil {
		return PhaseIdle
	}
	if s.Hovered != nil {
		return PhaseHovering
	}
	return PhaseDragging
}
