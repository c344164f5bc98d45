package domain

import (
	assignment "dispatch-board/internal/features/assignment/domain"
)

// TargetID identifies a drop target on the board.
type TargetID string

// TargetPool is the unassigned pool target.
const TargetPool TargetID = "pool"

// LaneTarget returns the target id of a route lane.
func LaneTarget(route assignment.RouteID) TargetID {
	return TargetID("lane:" + string(route))
}

// DropTarget is a container that items can be dropped into. Each target
// declares which item kinds it accepts; drops of other kinds are ignored
// without error.
type DropTarget struct {
	// ID is the target identifier.
	ID TargetID `json:"id"`
	// Route is the route this target assigns to (RouteUnassigned for the pool).
	Route assignment.RouteID `json:"route"`
	// Accepts lists the item kinds this target takes.
	Accepts []assignment.ItemKind `json:"accepts"`
}

// AcceptsKind reports whether the target takes items of the given kind.
func (t DropTarget) AcceptsKind(kind assignment.ItemKind) bool {
	for _, k := range t.Accepts {
		if k == kind {
			return true
		}
	}
	return false
}
