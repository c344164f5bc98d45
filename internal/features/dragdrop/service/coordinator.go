package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"dispatch-board/internal/core/logger"
	"dispatch-board/internal/core/metrics"
	assignment "dispatch-board/internal/features/assignment/domain"
	"dispatch-board/internal/features/dragdrop/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSessionActive is returned when a drag starts while another gesture
	// owns the board. The first session keeps the gesture until release or
	// cancel; the new input causes no state change.
	ErrSessionActive = errors.New("a drag session is already active")
	// ErrNoActiveSession is returned for hover/drop/cancel events with no
	// gesture in progress.
	ErrNoActiveSession = errors.New("no active drag session")
	// ErrUnknownTarget is returned when an event references a target that is
	// not registered on the board.
	ErrUnknownTarget = errors.New("drop target not registered")
	// ErrSessionMismatch is returned when an event carries a stale session id.
	ErrSessionMismatch = errors.New("event does not belong to the active session")
)

// AssignmentBoard is the slice of the assignment store the coordinator needs.
type AssignmentBoard interface {
	Contains(ref assignment.ItemRef) bool
	MoveItem(ctx context.Context, ref assignment.ItemRef, target assignment.RouteID) error
}

// DropResult describes what happened on release.
type DropResult struct {
	// Moved is true when a compatible target was hovered and the move was
	// committed. False means the release was a silent no-op.
	Moved bool `json:"moved"`
	// Target is the target the item landed on, when Moved.
	Target *domain.TargetID `json:"target,omitempty"`
	// Route is the route the item was assigned to, when Moved.
	Route assignment.RouteID `json:"route,omitempty"`
}

// TargetView is a drop target plus its live hover feedback flag.
type TargetView struct {
	domain.DropTarget
	// Hovered is true while a compatible drag hovers this target.
	Hovered bool `json:"hovered"`
}

// StateView is the coordinator's externally visible state.
type StateView struct {
	// Phase is the current state machine phase.
	Phase domain.Phase `json:"phase"`
	// Session is the active gesture, nil when idle.
	Session *domain.Session `json:"session,omitempty"`
	// Targets lists the registered drop targets in display order.
	Targets []TargetView `json:"targets"`
}

// Coordinator owns the active drag session. It tracks which item is picked
// up and which target is hovered, and on release delegates the committed
// move to the assignment store. Exactly one session is active at a time.
type Coordinator struct {
	mu      sync.Mutex
	board   AssignmentBoard
	targets map[domain.TargetID]domain.DropTarget
	order   []domain.TargetID
	session *domain.Session
}

// NewCoordinator builds a coordinator with the pool target plus one lane per
// active route. laneAccepts configures which item kinds lanes take; the pool
// always takes both kinds.
func NewCoordinator(board AssignmentBoard, registry *assignment.RouteRegistry, laneAccepts []assignment.ItemKind) *Coordinator {
	if len(laneAccepts) == 0 {
		laneAccepts = []assignment.ItemKind{assignment.ItemKindOrder, assignment.ItemKindDriver}
	}

	c := &Coordinator{
		board:   board,
		targets: make(map[domain.TargetID]domain.DropTarget),
	}

	c.register(domain.DropTarget{
		ID:      domain.TargetPool,
		Route:   assignment.RouteUnassigned,
		Accepts: []assignment.ItemKind{assignment.ItemKindOrder, assignment.ItemKindDriver},
	})
	for _, route := range registry.Active() {
		c.register(domain.DropTarget{
			ID:      domain.LaneTarget(route),
			Route:   route,
			Accepts: append([]assignment.ItemKind(nil), laneAccepts...),
		})
	}

	return c
}

func (c *Coordinator) register(target domain.DropTarget) {
	c.targets[target.ID] = target
	c.order = append(c.order, target.ID)
}

// Start begins a drag gesture for the item picked up from origin. While a
// session is active, further Start calls are rejected without touching the
// running gesture.
func (c *Coordinator) Start(item assignment.ItemRef, origin domain.TargetID) (*domain.Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return nil, ErrSessionActive
	}
	if _, ok := c.targets[origin]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTarget, origin)
	}
	if !c.board.Contains(item) {
		return nil, fmt.Errorf("%w: %s", assignment.ErrUnknownItem, item)
	}

	c.session = &domain.Session{
		ID:        uuid.NewString(),
		Item:      item,
		Origin:    origin,
		StartedAt: time.Now(),
	}

	metrics.DragSessions.Inc()
	logger.Get().Debug("Drag session started",
		zap.String("session_id", c.session.ID),
		zap.String("item", item.String()),
		zap.String("origin", string(origin)),
	)

	session := *c.session
	return &session, nil
}

// HoverEnter reports the pointer entering a drop target. Targets that do not
// accept the dragged kind are ignored: the phase stays Dragging and no hover
// feedback is shown.
func (c *Coordinator) HoverEnter(sessionID string, target domain.TargetID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkSessionLocked(sessionID); err != nil {
		return err
	}
	t, ok := c.targets[target]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTarget, target)
	}
	if !t.AcceptsKind(c.session.Item.Kind) {
		return nil
	}

	id := target
	c.session.Hovered = &id
	return nil
}

// HoverLeave reports the pointer leaving a drop target. Leaving a target that
// is not the hovered one is a no-op (enter/leave events may interleave).
func (c *Coordinator) HoverLeave(sessionID string, target domain.TargetID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkSessionLocked(sessionID); err != nil {
		return err
	}
	if c.session.Hovered != nil && *c.session.Hovered == target {
		c.session.Hovered = nil
	}
	return nil
}

// Drop releases the gesture. If a compatible target is hovered the move is
// committed through the assignment store; otherwise the release is a silent
// no-op. The session always ends, even when the committed move later rolls
// back.
func (c *Coordinator) Drop(ctx context.Context, sessionID string) (*DropResult, error) {
	c.mu.Lock()
	if err := c.checkSessionLocked(sessionID); err != nil {
		c.mu.Unlock()
		return nil, err
	}

	session := *c.session
	c.session = nil
	metrics.DragSessions.Dec()

	var target *domain.DropTarget
	if session.Hovered != nil {
		if t, ok := c.targets[*session.Hovered]; ok {
			target = &t
		}
	}
	c.mu.Unlock()

	if target == nil {
		return &DropResult{Moved: false}, nil
	}

	if err := c.board.MoveItem(ctx, session.Item, target.Route); err != nil {
		return nil, err
	}

	logger.Get().Info("Drag committed",
		zap.String("session_id", session.ID),
		zap.String("item", session.Item.String()),
		zap.String("route", string(target.Route)),
	)

	return &DropResult{Moved: true, Target: &target.ID, Route: target.Route}, nil
}

// Cancel aborts the gesture with no assignment change.
func (c *Coordinator) Cancel(sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkSessionLocked(sessionID); err != nil {
		return err
	}

	logger.Get().Debug("Drag session canceled", zap.String("session_id", c.session.ID))
	c.session = nil
	metrics.DragSessions.Dec()
	return nil
}

// State returns the current phase, session and per-target hover flags.
func (c *Coordinator) State() StateView {
	c.mu.Lock()
	defer c.mu.Unlock()

	view := StateView{
		Phase:   c.session.Phase(),
		Targets: make([]TargetView, 0, len(c.order)),
	}
	if c.session != nil {
		session := *c.session
		view.Session = &session
	}

	for _, id := range c.order {
		t := c.targets[id]
		hovered := c.session != nil && c.session.Hovered != nil && *c.session.Hovered == id
		view.Targets = append(view.Targets, TargetView{DropTarget: t, Hovered: hovered})
	}

	return view
}

// Targets returns the registered drop targets in display order.
func (c *Coordinator) Targets() []domain.DropTarget {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]domain.DropTarget, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.targets[id])
	}
	return out
}

// AssignmentsChanged implements the assignment listener contract: a store
// reload invalidates any gesture in progress.
func (c *Coordinator) AssignmentsChanged(event assignment.ChangeEvent) {
	if event.Reason != assignment.ChangeReasonReload {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session != nil {
		logger.Get().Debug("Drag session canceled by reload", zap.String("session_id", c.session.ID))
		c.session = nil
		metrics.DragSessions.Dec()
	}
}

func (c *Coordinator) checkSessionLocked(sessionID string) error {
	if c.session == nil {
		return ErrNoActiveSession
	}
	if sessionID != "" && sessionID != c.session.ID {
		return fmt.Errorf("%w: %s", ErrSessionMismatch, sessionID)
	}
	return nil
}
