package service

import (
	"context"
	"fmt"
	"sync"

	"dispatch-board/internal/core/logger"
	"dispatch-board/internal/core/metrics"
	"dispatch-board/internal/features/assignment/domain"
	"dispatch-board/internal/features/assignment/ports"

	"go.uber.org/zap"
)

// AssignmentStore is the authoritative in-memory mapping of items to routes.
// Moves are applied optimistically: the mapping changes first, then the
// backend mutation is issued, and on failure the exact pre-move value is
// restored. Every committed change (moves, rollbacks, reloads) is pushed
// synchronously to registered listeners, in commit order.
type AssignmentStore struct {
	mu       sync.Mutex
	gateway  ports.BackendGateway
	registry *domain.RouteRegistry

	// notifyMu is held from applying a change through delivering its event,
	// so listeners observe snapshots in commit order even when moves of
	// distinct items overlap. Always acquired before mu, never while
	// holding mu.
	notifyMu sync.Mutex

	orders    map[string]*domain.Order
	drivers   map[string]*domain.Driver
	orderSeq  []string
	driverSeq []string

	// inflight serializes moves per item: a second move for the same ItemRef
	// waits for the first to resolve before applying. Distinct items do not
	// interact.
	inflight map[domain.ItemRef]chan struct{}

	// epoch increments on every LoadInitial so an in-flight move cannot roll
	// back over freshly reloaded truth.
	epoch uint64

	listeners []domain.Listener
}

// NewAssignmentStore creates an empty store bound to the backend gateway and
// the active route registry.
func NewAssignmentStore(gateway ports.BackendGateway, registry *domain.RouteRegistry) *AssignmentStore {
	return &AssignmentStore{
		gateway:  gateway,
		registry: registry,
		orders:   make(map[string]*domain.Order),
		drivers:  make(map[string]*domain.Driver),
		inflight: make(map[domain.ItemRef]chan struct{}),
	}
}

// Subscribe registers a listener for assignment change events. Listeners are
// invoked synchronously in subscription order and must not call back into the
// store.
func (s *AssignmentStore) Subscribe(l domain.Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// LoadInitial replaces the store's contents with the backend's current-truth
// lists. Route values are normalized so absent assignments become
// RouteUnassigned. A reload event is emitted; the drag coordinator listens
// and cancels any active gesture.
func (s *AssignmentStore) LoadInitial(orders []domain.Order, drivers []domain.Driver) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()

	s.orders = make(map[string]*domain.Order, len(orders))
	s.drivers = make(map[string]*domain.Driver, len(drivers))
	s.orderSeq = make([]string, 0, len(orders))
	s.driverSeq = make([]string, 0, len(drivers))

	for _, o := range orders {
		o.RouteID = domain.NormalizeRoute(string(o.RouteID))
		if _, dup := s.orders[o.ID]; dup {
			continue
		}
		copied := o
		s.orders[o.ID] = &copied
		s.orderSeq = append(s.orderSeq, o.ID)
	}

	for _, d := range drivers {
		d.RouteID = domain.NormalizeRoute(string(d.RouteID))
		if _, dup := s.drivers[d.ID]; dup {
			continue
		}
		copied := d
		s.drivers[d.ID] = &copied
		s.driverSeq = append(s.driverSeq, d.ID)
	}

	s.epoch++
	event := s.eventLocked(domain.ChangeReasonReload, nil)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	deliver(listeners, event)
}

// MoveItem reassigns an item to the target route (or back to the pool with
// RouteUnassigned). The mapping is updated synchronously before the backend
// call is issued, so a render triggered right after a drop already shows the
// new state. On backend failure the pre-move value is restored and
// ErrRemoteMutation is returned.
//
// Structurally invalid requests (unknown item, unknown route) fail fast with
// no state change. Moves for the same item serialize; a second call waits for
// the in-flight one to resolve.
func (s *AssignmentStore) MoveItem(ctx context.Context, ref domain.ItemRef, target domain.RouteID) error {
	if !ref.Kind.Valid() {
		return fmt.Errorf("%w: bad kind %q", domain.ErrUnknownItem, ref.Kind)
	}

	release, err := s.acquireItem(ctx, ref)
	if err != nil {
		return err
	}
	defer release()

	s.notifyMu.Lock()
	s.mu.Lock()
	prev, ok := s.routeOfLocked(ref)
	if !ok {
		s.mu.Unlock()
		s.notifyMu.Unlock()
		metrics.Moves.WithLabelValues(string(ref.Kind), "rejected").Inc()
		return fmt.Errorf("%w: %s", domain.ErrUnknownItem, ref)
	}
	if target != domain.RouteUnassigned && !s.registry.Contains(target) {
		s.mu.Unlock()
		s.notifyMu.Unlock()
		metrics.Moves.WithLabelValues(string(ref.Kind), "rejected").Inc()
		return fmt.Errorf("%w: %q", domain.ErrUnknownRoute, target)
	}
	if prev == target {
		s.mu.Unlock()
		s.notifyMu.Unlock()
		return nil
	}

	s.setRouteLocked(ref, target)
	epoch := s.epoch
	event := s.eventLocked(domain.ChangeReasonMove, &ref)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	deliver(listeners, event)
	s.notifyMu.Unlock()

	if err := s.mutate(ctx, ref, target); err != nil {
		s.rollback(ref, prev, epoch)
		metrics.Moves.WithLabelValues(string(ref.Kind), "rolled_back").Inc()
		logger.Get().Warn("Assignment move rolled back",
			zap.String("item", ref.String()),
			zap.String("target_route", string(target)),
			zap.Error(err),
		)
		return fmt.Errorf("%w: %s -> %s: %v", domain.ErrRemoteMutation, ref, target, err)
	}

	metrics.Moves.WithLabelValues(string(ref.Kind), "committed").Inc()
	return nil
}

// AssignmentsByRoute returns the current mapping as route -> ordered items,
// with RouteUnassigned as a distinguished key. Orders come before drivers,
// each in load order. Every active route appears, empty or not; items whose
// loaded route is not in the registry are grouped under their literal route.
func (s *AssignmentStore) AssignmentsByRoute() map[domain.RouteID][]domain.ItemRef {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Buckets start as empty slices so empty routes serialize as [] on the
	// wire instead of null.
	out := make(map[domain.RouteID][]domain.ItemRef, s.registry.Len()+1)
	out[domain.RouteUnassigned] = []domain.ItemRef{}
	for _, route := range s.registry.Active() {
		out[route] = []domain.ItemRef{}
	}

	for _, id := range s.orderSeq {
		o := s.orders[id]
		out[o.RouteID] = append(out[o.RouteID], o.Ref())
	}
	for _, id := range s.driverSeq {
		d := s.drivers[id]
		out[d.RouteID] = append(out[d.RouteID], d.Ref())
	}

	return out
}

// Orders returns copies of all known orders in load order.
func (s *AssignmentStore) Orders() []domain.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ordersLocked()
}

// Drivers returns copies of all known drivers in load order.
func (s *AssignmentStore) Drivers() []domain.Driver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.driversLocked()
}

// Contains reports whether the item is known to the store.
func (s *AssignmentStore) Contains(ref domain.ItemRef) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.routeOfLocked(ref)
	return ok
}

// RouteOf returns the item's current route.
func (s *AssignmentStore) RouteOf(ref domain.ItemRef) (domain.RouteID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	route, ok := s.routeOfLocked(ref)
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnknownItem, ref)
	}
	return route, nil
}

// acquireItem claims the per-item move slot, waiting for any in-flight move
// on the same item to resolve first.
func (s *AssignmentStore) acquireItem(ctx context.Context, ref domain.ItemRef) (func(), error) {
	for {
		s.mu.Lock()
		busy, ok := s.inflight[ref]
		if !ok {
			done := make(chan struct{})
			s.inflight[ref] = done
			s.mu.Unlock()
			return func() {
				s.mu.Lock()
				delete(s.inflight, ref)
				s.mu.Unlock()
				close(done)
			}, nil
		}
		s.mu.Unlock()

		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (s *AssignmentStore) mutate(ctx context.Context, ref domain.ItemRef, target domain.RouteID) error {
	switch ref.Kind {
	case domain.ItemKindOrder:
		return s.gateway.SetOrderRoute(ctx, ref.ID, target)
	case domain.ItemKindDriver:
		return s.gateway.SetDriverRoute(ctx, ref.ID, target)
	default:
		return fmt.Errorf("%w: bad kind %q", domain.ErrUnknownItem, ref.Kind)
	}
}

// rollback restores the exact pre-move value. A reload that happened while
// the mutation was in flight supersedes the move, so the revert is skipped.
func (s *AssignmentStore) rollback(ref domain.ItemRef, prev domain.RouteID, epoch uint64) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if s.epoch != epoch {
		s.mu.Unlock()
		return
	}
	if _, ok := s.routeOfLocked(ref); !ok {
		s.mu.Unlock()
		return
	}
	s.setRouteLocked(ref, prev)
	event := s.eventLocked(domain.ChangeReasonRollback, &ref)
	listeners := s.listenersLocked()
	s.mu.Unlock()

	deliver(listeners, event)
}

func (s *AssignmentStore) routeOfLocked(ref domain.ItemRef) (domain.RouteID, bool) {
	switch ref.Kind {
	case domain.ItemKindOrder:
		if o, ok := s.orders[ref.ID]; ok {
			return o.RouteID, true
		}
	case domain.ItemKindDriver:
		if d, ok := s.drivers[ref.ID]; ok {
			return d.RouteID, true
		}
	}
	return "", false
}

func (s *AssignmentStore) setRouteLocked(ref domain.ItemRef, route domain.RouteID) {
	switch ref.Kind {
	case domain.ItemKindOrder:
		if o, ok := s.orders[ref.ID]; ok {
			o.RouteID = route
		}
	case domain.ItemKindDriver:
		if d, ok := s.drivers[ref.ID]; ok {
			d.RouteID = route
		}
	}
}

func (s *AssignmentStore) ordersLocked() []domain.Order {
	out := make([]domain.Order, 0, len(s.orderSeq))
	for _, id := range s.orderSeq {
		out = append(out, *s.orders[id])
	}
	return out
}

func (s *AssignmentStore) driversLocked() []domain.Driver {
	out := make([]domain.Driver, 0, len(s.driverSeq))
	for _, id := range s.driverSeq {
		out = append(out, *s.drivers[id])
	}
	return out
}

func (s *AssignmentStore) eventLocked(reason domain.ChangeReason, item *domain.ItemRef) domain.ChangeEvent {
	return domain.ChangeEvent{
		Reason: reason,
		Item:   item,
		Snapshot: domain.Snapshot{
			Orders:  s.ordersLocked(),
			Drivers: s.driversLocked(),
		},
	}
}

func (s *AssignmentStore) listenersLocked() []domain.Listener {
	listeners := make([]domain.Listener, len(s.listeners))
	copy(listeners, s.listeners)
	return listeners
}

func deliver(listeners []domain.Listener, event domain.ChangeEvent) {
	for _, l := range listeners {
		l.AssignmentsChanged(event)
	}
}
