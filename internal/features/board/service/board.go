package service

import (
	"fmt"

	assignment "dispatch-board/internal/features/assignment/domain"
	dragdrop "dispatch-board/internal/features/dragdrop/domain"
	dragservice "dispatch-board/internal/features/dragdrop/service"
)

// Store is the slice of the assignment store the board projection needs.
type Store interface {
	Orders() []assignment.Order
	Drivers() []assignment.Driver
}

// DragState exposes the coordinator's current state.
type DragState interface {
	State() dragservice.StateView
}

// ItemView is one draggable card on the board.
type ItemView struct {
	// Kind is the item kind.
	Kind assignment.ItemKind `json:"kind"`
	// ID is the item id within its kind's namespace.
	ID string `json:"id"`
	// Label is the rendered card text.
	Label string `json:"label"`
	// Assigned shows the informational "Asignado" badge. It never blocks
	// picking the card up again.
	Assigned bool `json:"assigned"`
	// Dragging is true while this card is the active drag's item; the card
	// keeps rendering in place with reduced opacity.
	Dragging bool `json:"dragging"`
}

// LaneView is one drop target with its current membership.
type LaneView struct {
	// Target is the drop target id.
	Target dragdrop.TargetID `json:"target"`
	// Route is the route this lane assigns to.
	Route assignment.RouteID `json:"route"`
	// Label is the lane heading.
	Label string `json:"label"`
	// Accepts lists the item kinds the lane takes.
	Accepts []assignment.ItemKind `json:"accepts"`
	// Hovered is true while a compatible drag hovers this lane.
	Hovered bool `json:"hovered"`
	// Items are the cards currently in the lane, orders before drivers.
	Items []ItemView `json:"items"`
}

// BoardView is the whole console board: the pool lane plus one lane per
// active route, in display order.
type BoardView struct {
	// Phase is the drag state machine phase.
	Phase dragdrop.Phase `json:"phase"`
	// Lanes holds the pool and route lanes.
	Lanes []LaneView `json:"lanes"`
}

// BoardService projects the assignment store and drag coordinator into the
// console's board view model.
type BoardService struct {
	store Store
	drag  DragState
}

// NewBoardService creates a new BoardService.
func NewBoardService(store Store, drag DragState) *BoardService {
	return &BoardService{
		store: store,
		drag:  drag,
	}
}

// Board builds the current board view.
func (s *BoardService) Board() BoardView {
	state := s.drag.State()
	orders := s.store.Orders()
	drivers := s.store.Drivers()

	var draggingItem *assignment.ItemRef
	if state.Session != nil {
		item := state.Session.Item
		draggingItem = &item
	}

	view := BoardView{
		Phase: state.Phase,
		Lanes: make([]LaneView, 0, len(state.Targets)),
	}

	laneRoutes := make(map[assignment.RouteID]struct{}, len(state.Targets))
	for _, target := range state.Targets {
		if target.Route != assignment.RouteUnassigned {
			laneRoutes[target.Route] = struct{}{}
		}
	}

	// Items on routes with no lane surface in the pool, mirroring the
	// map's no-route fallback, so no card ever vanishes from the board.
	inLane := func(laneRoute, itemRoute assignment.RouteID) bool {
		if itemRoute == laneRoute {
			return true
		}
		if laneRoute != assignment.RouteUnassigned {
			return false
		}
		_, hasLane := laneRoutes[itemRoute]
		return !hasLane
	}

	for _, target := range state.Targets {
		lane := LaneView{
			Target:  target.ID,
			Route:   target.Route,
			Label:   laneLabel(target.Route),
			Accepts: target.Accepts,
			Hovered: target.Hovered,
		}

		// Membership follows the assignment; the accept set only governs
		// what may be dropped here.
		for _, o := range orders {
			if !inLane(target.Route, o.RouteID) {
				continue
			}
			lane.Items = append(lane.Items, itemView(o.Ref(), orderLabel(o), o.Assigned(), draggingItem))
		}
		for _, d := range drivers {
			if !inLane(target.Route, d.RouteID) {
				continue
			}
			lane.Items = append(lane.Items, itemView(d.Ref(), driverLabel(d), d.Assigned(), draggingItem))
		}

		view.Lanes = append(view.Lanes, lane)
	}

	return view
}

func itemView(ref assignment.ItemRef, label string, assigned bool, dragging *assignment.ItemRef) ItemView {
	return ItemView{
		Kind:     ref.Kind,
		ID:       ref.ID,
		Label:    label,
		Assigned: assigned,
		Dragging: dragging != nil && *dragging == ref,
	}
}

func laneLabel(route assignment.RouteID) string {
	if route == assignment.RouteUnassigned {
		return "Sin asignar"
	}
	return "Ruta " + string(route)
}

func orderLabel(o assignment.Order) string {
	return fmt.Sprintf("#%s %s", o.Number, o.CustomerName)
}

func driverLabel(d assignment.Driver) string {
	return fmt.Sprintf("%s %s", d.Code, d.FullName)
}
