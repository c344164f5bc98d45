package handler

import (
	"errors"
	"net/http"

	"dispatch-board/internal/core/logger"
	"dispatch-board/internal/features/assignment/domain"
	"dispatch-board/internal/features/assignment/ports"
	"dispatch-board/internal/features/assignment/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AssignmentHandler handles HTTP requests for route assignments.
type AssignmentHandler struct {
	// store is the in-memory assignment store.
	store *service.AssignmentStore
	// gateway is used by refresh to reload state from the dispatch API.
	gateway ports.BackendGateway
}

// NewAssignmentHandler creates a new instance of AssignmentHandler.
func NewAssignmentHandler(store *service.AssignmentStore, gateway ports.BackendGateway) *AssignmentHandler {
	return &AssignmentHandler{
		store:   store,
		gateway: gateway,
	}
}

// MoveRequest is the body for a move operation.
type MoveRequest struct {
	// Kind is the item kind, "order" or "driver".
	Kind string `json:"kind"`
	// ID is the item identifier.
	ID string `json:"id"`
	// Route is the target route, or "unassigned".
	Route string `json:"route"`
}

// MoveResponse reports the outcome of a committed move.
type MoveResponse struct {
	// Item is the moved item.
	Item domain.ItemRef `json:"item"`
	// Route is the route the item now belongs to.
	Route domain.RouteID `json:"route"`
}

// Move handles the request to assign an item to a route.
// @Summary Move an order or driver to a route
// @Description Applies the assignment optimistically and persists it on the dispatch API. A persistence failure rolls the assignment back.
// @Accept json
// @Produce json
// @Param request body MoveRequest true "Move request"
// @Success 200 {object} MoveResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /assignments/move [post]
func (h *AssignmentHandler) Move(c *fiber.Ctx) error {
	rayID := rayID(c)

	var req MoveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Invalid request body",
			RayID:   rayID,
		})
	}

	kind := domain.ItemKind(req.Kind)
	if !kind.Valid() {
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
			Message: "Unknown item kind: " + req.Kind,
			RayID:   rayID,
		})
	}
	if req.ID == "" {
		return c.Status(http.StatusBadRequest).JSON(ErrorResponse{
			Message: "Item ID is required",
			RayID:   rayID,
		})
	}

	ref := domain.ItemRef{Kind: kind, ID: req.ID}
	route := domain.NormalizeRoute(req.Route)

	if err := h.store.MoveItem(c.Context(), ref, route); err != nil {
		logger.Get().Error("Failed to move item",
			zap.String("item", ref.String()),
			zap.String("route", string(route)),
			zap.String("ray_id", rayID),
			zap.Error(err),
		)

		status := http.StatusInternalServerError
		msg := "Internal Server Error"
		retryable := false

		if errors.Is(err, domain.ErrUnknownItem) || errors.Is(err, domain.ErrUnknownRoute) {
			status = http.StatusUnprocessableEntity
			msg = err.Error()
		} else if errors.Is(err, domain.ErrRemoteMutation) {
			status = http.StatusBadGateway
			msg = "Assignment could not be persisted and was reverted"
			retryable = true
		} else {
			msg = err.Error()
		}

		return c.Status(status).JSON(ErrorResponse{
			Message:   msg,
			RayID:     rayID,
			Retryable: retryable,
		})
	}

	return c.Status(http.StatusOK).JSON(MoveResponse{
		Item:  ref,
		Route: route,
	})
}

// AssignmentsResponse groups item refs per route, including unassigned.
type AssignmentsResponse struct {
	// Routes maps each route ID to its assigned items.
	Routes map[domain.RouteID][]domain.ItemRef `json:"routes"`
}

// List handles the request to read the current assignment state.
// @Summary List assignments grouped by route
// @Produce json
// @Success 200 {object} AssignmentsResponse
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(AssignmentsResponse{
		Routes: h.store.AssignmentsByRoute(),
	})
}

// RefreshResponse reports the reloaded dataset sizes.
type RefreshResponse struct {
	// Orders is the number of orders loaded.
	Orders int `json:"orders"`
	// Drivers is the number of drivers loaded.
	Drivers int `json:"drivers"`
}

// Refresh handles the request to reload orders and drivers from the dispatch API.
// A reload replaces local state entirely, including any assignment that was
// still waiting on a rollback.
// @Summary Reload orders and drivers from the dispatch API
// @Produce json
// @Success 200 {object} RefreshResponse
// @Failure 502 {object} ErrorResponse
// @Router /assignments/refresh [post]
func (h *AssignmentHandler) Refresh(c *fiber.Ctx) error {
	rayID := rayID(c)
	ctx := c.Context()

	orders, err := h.gateway.ListOrders(ctx)
	if err != nil {
		logger.Get().Error("Failed to refresh orders", zap.String("ray_id", rayID), zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{
			Message:   "Dispatch API is unavailable",
			RayID:     rayID,
			Retryable: true,
		})
	}

	drivers, err := h.gateway.ListDrivers(ctx)
	if err != nil {
		logger.Get().Error("Failed to refresh drivers", zap.String("ray_id", rayID), zap.Error(err))
		return c.Status(http.StatusBadGateway).JSON(ErrorResponse{
			Message:   "Dispatch API is unavailable",
			RayID:     rayID,
			Retryable: true,
		})
	}

	h.store.LoadInitial(orders, drivers)

	return c.Status(http.StatusOK).JSON(RefreshResponse{
		Orders:  len(orders),
		Drivers: len(drivers),
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
