package domain

// Driver represents a delivery driver that can be placed on a route lane.
type Driver struct {
	// ID is the unique driver identifier.
	ID string `json:"id"`
	// Code is the short dispatch code printed on the driver card.
	Code string `json:"code"`
	// FullName is the driver's full name.
	FullName string `json:"full_name"`
	// VehicleType describes the vehicle (e.g., moto, carro, bicicleta).
	VehicleType string `json:"vehicle_type"`
	// Phone is the contact phone, when known.
	Phone string `json:"phone,omitempty"`
	// Available indicates whether the driver reported as available today.
	Available bool `json:"available"`
	// RouteID is the current route assignment (RouteUnassigned when pooled).
	RouteID RouteID `json:"route_id"`
}

// Ref returns the item identity of the driver.
func (d Driver) Ref() ItemRef {
	return ItemRef{Kind: ItemKindDriver, ID: d.ID}
}

// Assigned reports whether the driver is currently on a route.
func (d Driver) Assigned() bool {
	return d.RouteID != RouteUnassigned
}
