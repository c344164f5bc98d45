package domain

import (
	assignment "dispatch-board/internal/features/assignment/domain"
)

// DefaultPalette is the base color set assigned to routes in display order.
// Registries with more routes than colors cycle through it.
var DefaultPalette = []string{
	"#2563EB", // blue
	"#16A34A", // green
	"#F59E0B", // amber
	"#DC2626", // red
	"#7C3AED", // violet
	"#0D9488", // teal
}

// NoRouteColor is the designated color for unassigned orders. Route ids not
// present in the registry fall back to it as well.
const NoRouteColor = "#64748B"

// Palette is the fixed, deterministic route -> color mapping built once from
// the active registry.
type Palette struct {
	colors map[assignment.RouteID]string
}

// NewPalette binds a color to each active route in display order, cycling the
// base colors when routes outnumber them. An empty base falls back to
// DefaultPalette.
func NewPalette(registry *assignment.RouteRegistry, base []string) *Palette {
	if len(base) == 0 {
		base = DefaultPalette
	}

	colors := make(map[assignment.RouteID]string, registry.Len())
	for i, route := range registry.Active() {
		colors[route] = base[i%len(base)]
	}

	return &Palette{colors: colors}
}

// ColorFor returns the color bound to the route. Unassigned and unknown
// routes render NoRouteColor.
func (p *Palette) ColorFor(route assignment.RouteID) string {
	if color, ok := p.colors[route]; ok {
		return color
	}
	return NoRouteColor
}

// Known reports whether the route has a bound color.
func (p *Palette) Known(route assignment.RouteID) bool {
	_, ok := p.colors[route]
	return ok
}
