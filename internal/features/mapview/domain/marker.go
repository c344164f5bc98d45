package domain

import (
	"time"

	assignment "dispatch-board/internal/features/assignment/domain"
)

// Marker is the visual projection of one order's assignment state. It is
// derived, never authoritative: the synchronizer recomputes it whenever the
// underlying order or its assignment changes.
type Marker struct {
	// OrderID keys the marker; exactly one marker exists per located order.
	OrderID string `json:"order_id"`
	// Coordinate is where the marker is placed.
	Coordinate assignment.Coordinate `json:"coordinate"`
	// Color is the hex color bound to the order's current route.
	Color string `json:"color"`
	// Popup is the marker's popup content.
	Popup string `json:"popup"`
}

// LegendEntry is one row of the map legend.
type LegendEntry struct {
	// Route is the route this row describes (RouteUnassigned for the pool row).
	Route assignment.RouteID `json:"route"`
	// Color is the route's display color.
	Color string `json:"color"`
	// Count is the number of orders currently on the route.
	Count int `json:"count"`
	// Label is the rendered row text, e.g. "B (2 pedidos)".
	Label string `json:"label"`
}

// Legend lists each active route's color and order count plus the unassigned
// count.
type Legend struct {
	// Routes holds one entry per active route, in display order.
	Routes []LegendEntry `json:"routes"`
	// Unassigned is the pool row.
	Unassigned LegendEntry `json:"unassigned"`
}

// MapSnapshot bundles everything a console needs to paint the map.
type MapSnapshot struct {
	// Markers holds the current marker set in order list order.
	Markers []Marker `json:"markers"`
	// Legend is the current legend.
	Legend Legend `json:"legend"`
	// UpdatedAt is when the snapshot was computed.
	UpdatedAt time.Time `json:"updated_at"`
}
