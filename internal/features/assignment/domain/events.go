package domain

// ChangeReason classifies why the assignment mapping changed.
type ChangeReason string

const (
	// ChangeReasonMove is an optimistic assignment applied by a committed drop.
	ChangeReasonMove ChangeReason = "move"
	// ChangeReasonRollback is the restoration of a pre-move value after the
	// remote mutation failed.
	ChangeReasonRollback ChangeReason = "rollback"
	// ChangeReasonReload is a full replacement of the store's contents.
	ChangeReasonReload ChangeReason = "reload"
)

// Snapshot is a copy of the store's contents at notification time. Listeners
// own their snapshot and may retain it.
type Snapshot struct {
	// Orders holds all known orders in load order.
	Orders []Order `json:"orders"`
	// Drivers holds all known drivers in load order.
	Drivers []Driver `json:"drivers"`
}

// ChangeEvent is delivered synchronously to every registered listener on each
// committed mapping change, rollbacks and reloads included.
type ChangeEvent struct {
	// Reason classifies the change.
	Reason ChangeReason `json:"reason"`
	// Item is the moved item for move/rollback events, nil for reloads.
	Item *ItemRef `json:"item,omitempty"`
	// Snapshot is the store's state after the change.
	Snapshot Snapshot `json:"-"`
}

// Listener receives assignment change notifications. Listeners are invoked
// synchronously and must not call back into the store.
type Listener interface {
	AssignmentsChanged(event ChangeEvent)
}
