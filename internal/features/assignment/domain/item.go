package domain

import "fmt"

// ItemKind discriminates the two draggable entity kinds managed by the board.
type ItemKind string

const (
	// ItemKindOrder is a customer order waiting to be routed.
	ItemKindOrder ItemKind = "order"
	// ItemKindDriver is a delivery driver that can be placed on a route.
	ItemKindDriver ItemKind = "driver"
)

// Valid reports whether the kind is one of the known item kinds.
func (k ItemKind) Valid() bool {
	return k == ItemKindOrder || k == ItemKindDriver
}

// ItemRef identifies a draggable item as a tagged (kind, id) pair.
// Orders and drivers live in independent id namespaces, so an order and a
// driver may share the same raw id without colliding.
type ItemRef struct {
	// Kind is the item kind discriminator.
	Kind ItemKind `json:"kind"`
	// ID is the item identifier within its kind's namespace.
	ID string `json:"id"`
}

// String returns a compact "kind/id" form used in logs and error messages.
func (r ItemRef) String() string {
	return fmt.Sprintf("%s/%s", r.Kind, r.ID)
}
