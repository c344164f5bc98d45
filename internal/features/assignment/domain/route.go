package domain

import (
	"fmt"
	"strings"
)

// RouteID identifies an active delivery route. Routes are short names (one
// letter per active route in practice) supplied by the backend/configuration;
// the board never invents or deletes routes.
type RouteID string

// RouteUnassigned is the distinguished pseudo-route holding every item that
// is not placed on any lane.
const RouteUnassigned RouteID = "unassigned"

// NormalizeRoute maps the backend's empty/absent route value to
// RouteUnassigned so the rest of the system only ever deals with one
// representation of "no route".
func NormalizeRoute(raw string) RouteID {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return RouteUnassigned
	}
	return RouteID(trimmed)
}

// RouteRegistry is the externally supplied set of active routes, in display
// order. It is immutable after construction.
type RouteRegistry struct {
	ids   []RouteID
	index map[RouteID]struct{}
}

// NewRouteRegistry builds a registry from the configured route identifiers.
// Empty entries, duplicates and the reserved "unassigned" name are rejected.
func NewRouteRegistry(ids []string) (*RouteRegistry, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("route registry requires at least one route")
	}

	registry := &RouteRegistry{
		ids:   make([]RouteID, 0, len(ids)),
		index: make(map[RouteID]struct{}, len(ids)),
	}

	for _, raw := range ids {
		id := RouteID(strings.TrimSpace(raw))
		if id == "" {
			return nil, fmt.Errorf("route registry contains an empty route id")
		}
		if id == RouteUnassigned {
			return nil, fmt.Errorf("route id %q is reserved", RouteUnassigned)
		}
		if _, dup := registry.index[id]; dup {
			return nil, fmt.Errorf("route id %q is duplicated", id)
		}
		registry.ids = append(registry.ids, id)
		registry.index[id] = struct{}{}
	}

	return registry, nil
}

// Contains reports whether the route is active.
func (r *RouteRegistry) Contains(id RouteID) bool {
	_, ok := r.index[id]
	return ok
}

// Active returns the active routes in display order.
func (r *RouteRegistry) Active() []RouteID {
	out := make([]RouteID, len(r.ids))
	copy(out, r.ids)
	return out
}

// Len returns the number of active routes.
func (r *RouteRegistry) Len() int {
	return len(r.ids)
}
