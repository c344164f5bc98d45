package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"dispatch-board/internal/core/logger"
	"dispatch-board/internal/core/metrics"
	assignment "dispatch-board/internal/features/assignment/domain"
	"dispatch-board/internal/features/mapview/domain"
	"dispatch-board/internal/features/mapview/ports"

	"go.uber.org/zap"
)

// Synchronizer keeps the marker set and legend in lockstep with the
// assignment store. It subscribes to the store and, on every change event,
// diffs its keyed marker map: markers for vanished orders are removed, newly
// seen located orders gain a marker, and markers whose route or order data
// changed are rewritten in place. Orders without coordinates are simply not
// rendered.
type Synchronizer struct {
	mu        sync.Mutex
	registry  *assignment.RouteRegistry
	palette   *domain.Palette
	publisher ports.SnapshotRepository

	markers   map[string]domain.Marker
	markerSeq []string
	legend    domain.Legend
	updatedAt time.Time
}

// NewSynchronizer creates an empty synchronizer. publisher may be nil, in
// which case snapshots are kept in memory only.
func NewSynchronizer(registry *assignment.RouteRegistry, palette *domain.Palette, publisher ports.SnapshotRepository) *Synchronizer {
	s := &Synchronizer{
		registry:  registry,
		palette:   palette,
		publisher: publisher,
		markers:   make(map[string]domain.Marker),
	}
	s.legend = s.legendFor(nil)
	return s
}

// AssignmentsChanged implements the assignment listener contract.
func (s *Synchronizer) AssignmentsChanged(event assignment.ChangeEvent) {
	snapshot := s.apply(event.Snapshot)

	if s.publisher == nil {
		return
	}
	// Snapshot publishing is best effort; the live state is authoritative.
	if err := s.publisher.Publish(context.Background(), snapshot); err != nil {
		logger.Get().Warn("Failed to publish map snapshot", zap.Error(err))
	}
}

// Markers returns the current marker set in order list order.
func (s *Synchronizer) Markers() []domain.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.markersLocked()
}

// Legend returns the current legend.
func (s *Synchronizer) Legend() domain.Legend {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.legend
}

// Snapshot returns markers and legend as one consistent unit.
func (s *Synchronizer) Snapshot() domain.MapSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.MapSnapshot{
		Markers:   s.markersLocked(),
		Legend:    s.legend,
		UpdatedAt: s.updatedAt,
	}
}

func (s *Synchronizer) apply(snap assignment.Snapshot) domain.MapSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(snap.Orders))
	seq := make([]string, 0, len(snap.Orders))

	for _, order := range snap.Orders {
		if order.Location == nil {
			continue
		}
		seen[order.ID] = struct{}{}
		seq = append(seq, order.ID)

		next := domain.Marker{
			OrderID:    order.ID,
			Coordinate: *order.Location,
			Color:      s.palette.ColorFor(order.RouteID),
			Popup:      s.popupFor(order),
		}
		if current, ok := s.markers[order.ID]; !ok || current != next {
			s.markers[order.ID] = next
		}
	}

	for id := range s.markers {
		if _, ok := seen[id]; !ok {
			delete(s.markers, id)
		}
	}

	s.markerSeq = seq
	s.legend = s.legendFor(snap.Orders)
	s.updatedAt = time.Now()
	metrics.Markers.Set(float64(len(s.markers)))

	return domain.MapSnapshot{
		Markers:   s.markersLocked(),
		Legend:    s.legend,
		UpdatedAt: s.updatedAt,
	}
}

// popupFor builds the marker popup: display number, customer, address and the
// current route label. Recomputed on every change, never cached stale.
func (s *Synchronizer) popupFor(order assignment.Order) string {
	routeLabel := "Sin asignar"
	if s.palette.Known(order.RouteID) {
		routeLabel = "Ruta " + string(order.RouteID)
	}
	return fmt.Sprintf("Pedido #%s<br>%s<br>%s<br>%s",
		order.Number, order.CustomerName, order.Address, routeLabel)
}

// legendFor counts orders per active route; orders off the registry (pool or
// unknown route id) land in the unassigned row.
func (s *Synchronizer) legendFor(orders []assignment.Order) domain.Legend {
	counts := make(map[assignment.RouteID]int, s.registry.Len())
	unassigned := 0
	for _, order := range orders {
		if s.palette.Known(order.RouteID) {
			counts[order.RouteID]++
		} else {
			unassigned++
		}
	}

	legend := domain.Legend{Routes: make([]domain.LegendEntry, 0, s.registry.Len())}
	for _, route := range s.registry.Active() {
		legend.Routes = append(legend.Routes, domain.LegendEntry{
			Route: route,
			Color: s.palette.ColorFor(route),
			Count: counts[route],
			Label: fmt.Sprintf("%s (%d pedidos)", route, counts[route]),
		})
	}
	legend.Unassigned = domain.LegendEntry{
		Route: assignment.RouteUnassigned,
		Color: domain.NoRouteColor,
		Count: unassigned,
		Label: fmt.Sprintf("Sin asignar (%d pedidos)", unassigned),
	}

	return legend
}

func (s *Synchronizer) markersLocked() []domain.Marker {
	out := make([]domain.Marker, 0, len(s.markerSeq))
	for _, id := range s.markerSeq {
		out = append(out, s.markers[id])
	}
	return out
}
