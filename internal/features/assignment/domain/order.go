package domain

// Coordinate is a geographic point (latitude, longitude).
type Coordinate struct {
	// Lat is the latitude in decimal degrees.
	Lat float64 `json:"lat"`
	// Lng is the longitude in decimal degrees.
	Lng float64 `json:"lng"`
}

// Order represents a customer order participating in the assignment workflow.
// The authoritative record lives in the remote backend; the board only owns
// the in-memory route assignment while the operator works.
type Order struct {
	// ID is the unique order identifier.
	ID string `json:"id"`
	// Number is the human-facing order number shown on cards and popups.
	Number string `json:"number"`
	// CustomerName is the customer's display name.
	CustomerName string `json:"customer_name"`
	// Address is the delivery address.
	Address string `json:"address"`
	// Total is the order total in COP.
	Total float64 `json:"total"`
	// RouteID is the current route assignment (RouteUnassigned when pooled).
	RouteID RouteID `json:"route_id"`
	// Location is the delivery coordinate, when the address was geocoded.
	// Orders without a location still participate fully in assignment; they
	// are simply not rendered on the map.
	Location *Coordinate `json:"location,omitempty"`
}

// Ref returns the item identity of the order.
func (o Order) Ref() ItemRef {
	return ItemRef{Kind: ItemKindOrder, ID: o.ID}
}

// Assigned reports whether the order is currently on a route.
func (o Order) Assigned() bool {
	return o.RouteID != RouteUnassigned
}
