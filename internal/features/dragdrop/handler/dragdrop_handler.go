package handler

import (
	"errors"
	"net/http"

	"dispatch-board/internal/core/logger"
	assignment "dispatch-board/internal/features/assignment/domain"
	"dispatch-board/internal/features/dragdrop/domain"
	"dispatch-board/internal/features/dragdrop/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// DragDropHandler handles HTTP requests for the drag state machine.
type DragDropHandler struct {
	// coordinator owns the active drag session.
	coordinator *service.Coordinator
}

// NewDragDropHandler creates a new instance of DragDropHandler.
func NewDragDropHandler(c *service.Coordinator) *DragDropHandler {
	return &DragDropHandler{coordinator: c}
}

// StartRequest is the body for starting a drag gesture.
type StartRequest struct {
	// Kind is the item kind, "order" or "driver".
	Kind string `json:"kind"`
	// ID is the item identifier.
	ID string `json:"id"`
	// Origin is the target the item was picked up from.
	Origin string `json:"origin"`
}

// Start handles the request to begin a drag gesture.
// @Summary Start a drag session for an item
// @Accept json
// @Produce json
// @Param request body StartRequest true "Start request"
// @Success 201 {object} domain.Session
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /drag/start [post]
func (h *DragDropHandler) Start(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}

	kind := assignment.ItemKind(req.Kind)
	if !kind.Valid() {
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
			Message: "Unknown item kind: " + req.Kind,
			RayID:   rayID,
		})
	}

	origin := domain.TargetID(req.Origin)
	if origin == "" {
		origin = domain.TargetPool
	}

	session, err := h.coordinator.Start(assignment.ItemRef{Kind: kind, ID: req.ID}, origin)
	if err != nil {
		return h.mapError(c, rayID, err)
	}

	return c.Status(http.StatusCreated).JSON(session)
}

// SessionRequest is the body shared by hover, leave, drop and cancel.
type SessionRequest struct {
	// SessionID is the session the event belongs to. Empty means "the
	// active session".
	SessionID string `json:"session_id"`
	// Target is the drop target for hover and leave events.
	Target string `json:"target"`
}

// HoverEnter handles the pointer entering a drop target.
// @Summary Mark a drop target as hovered
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Hover request"
// @Success 200 {object} service.StateView
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /drag/hover [post]
func (h *DragDropHandler) HoverEnter(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}

	if err := h.coordinator.HoverEnter(req.SessionID, domain.TargetID(req.Target)); err != nil {
		return h.mapError(c, rayID, err)
	}

	return c.Status(http.StatusOK).JSON(h.coordinator.State())
}

// HoverLeave handles the pointer leaving a drop target.
// @Summary Clear the hovered drop target
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Leave request"
// @Success 200 {object} service.StateView
// @Failure 409 {object} ErrorResponse
// @Router /drag/leave [post]
func (h *DragDropHandler) HoverLeave(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}

	if err := h.coordinator.HoverLeave(req.SessionID, domain.TargetID(req.Target)); err != nil {
		return h.mapError(c, rayID, err)
	}

	return c.Status(http.StatusOK).JSON(h.coordinator.State())
}

// Drop handles releasing the dragged item.
// @Summary Drop the dragged item on the hovered target
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Drop request"
// @Success 200 {object} service.DropResult
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /drag/drop [post]
func (h *DragDropHandler) Drop(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}

	result, err := h.coordinator.Drop(c.Context(), req.SessionID)
	if err != nil {
		return h.mapError(c, rayID, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// Cancel handles aborting the active drag gesture.
// @Summary Cancel the active drag session
// @Accept json
// @Produce json
// @Param request body SessionRequest true "Cancel request"
// @Success 200 {object} service.StateView
// @Failure 409 {object} ErrorResponse
// @Router /drag/cancel [post]
func (h *DragDropHandler) Cancel(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req SessionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}

	if err := h.coordinator.Cancel(req.SessionID); err != nil {
		return h.mapError(c, rayID, err)
	}

	return c.Status(http.StatusOK).JSON(h.coordinator.State())
}

// State handles reading the drag state machine.
// @Summary Inspect the drag state machine
// @Produce json
// @Success 200 {object} service.StateView
// @Router /drag/state [get]
func (h *DragDropHandler) State(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.coordinator.State())
}

// mapError translates coordinator and store errors into HTTP responses.
func (h *DragDropHandler) mapError(c *fiber.Ctx, rayID string, err error) error {
	logger.Get().Warn("Drag operation failed",
		zap.String("ray_id", rayID),
		zap.Error(err),
	)

	status := http.StatusInternalServerError
	retryable := false

	switch {
	case errors.Is(err, service.ErrSessionActive),
		errors.Is(err, service.ErrNoActiveSession),
		errors.Is(err, service.ErrSessionMismatch):
		status = http.StatusConflict
	case errors.Is(err, service.ErrUnknownTarget):
		status = http.StatusNotFound
	case errors.Is(err, assignment.ErrUnknownItem),
		errors.Is(err, assignment.ErrUnknownRoute):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, assignment.ErrRemoteMutation):
		status = http.StatusBadGateway
		retryable = true
	}

	return c.Status(status).JSON(ErrorResponse{
		Message:   err.Error(),
		RayID:     rayID,
		Retryable: retryable,
	})
}

// rayID extracts the request ID injected by the requestid middleware.
func rayID(c *fiber.Ctx) string {
	id, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return id
}

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
	// Retryable indicates the same request may succeed if retried.
	Retryable bool `json:"retryable,omitempty"`
}
