package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"

	"dispatch-board/internal/features/assignment/domain"
	"dispatch-board/internal/features/assignment/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockGateway is a mock implementation of BackendGateway for testing.
type mockGateway struct {
	orders     []domain.Order
	drivers    []domain.Driver
	listErr    error
	mutateErr  error
	lastOrder  string
	lastDriver string
}

func (m *mockGateway) ListOrders(ctx context.Context) ([]domain.Order, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.orders, nil
}

func (m *mockGateway) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.drivers, nil
}

func (m *mockGateway) SetOrderRoute(ctx context.Context, orderID string, route domain.RouteID) error {
	m.lastOrder = orderID
	return m.mutateErr
}

func (m *mockGateway) SetDriverRoute(ctx context.Context, driverID string, route domain.RouteID) error {
	m.lastDriver = driverID
	return m.mutateErr
}

func newTestApp(t *testing.T, gateway *mockGateway) (*fiber.App, *service.AssignmentStore) {
	t.Helper()

	registry, err := domain.NewRouteRegistry([]string{"A", "B"})
	require.NoError(t, err)

	store := service.NewAssignmentStore(gateway, registry)
	store.LoadInitial(
		[]domain.Order{
			{ID: "o1", Number: "1001", RouteID: domain.RouteUnassigned},
			{ID: "o2", Number: "1002", RouteID: "A"},
		},
		[]domain.Driver{
			{ID: "d1", Code: "D-01", RouteID: domain.RouteUnassigned},
		},
	)

	h := NewAssignmentHandler(store, gateway)

	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("requestid", "test-ray-id")
		return c.Next()
	})
	app.Post("/assignments/move", h.Move)
	app.Get("/assignments", h.List)
	app.Post("/assignments/refresh", h.Refresh)

	return app, store
}

// TestAssignmentHandler_Move_Success verifies a committed move.
func TestAssignmentHandler_Move_Success(t *testing.T) {
	gateway := &mockGateway{}
	app, store := newTestApp(t, gateway)

	req := httptest.NewRequest("POST", "/assignments/move",
		strings.NewReader(`{"kind":"order","id":"o1","route":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result MoveResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, domain.RouteID("B"), result.Route)
	assert.Equal(t, "o1", result.Item.ID)

	route, err := store.RouteOf(domain.ItemRef{Kind: domain.ItemKindOrder, ID: "o1"})
	require.NoError(t, err)
	assert.Equal(t, domain.RouteID("B"), route)
	assert.Equal(t, "o1", gateway.lastOrder)
}

// TestAssignmentHandler_Move_RollsBackOnGatewayError verifies the 502 mapping.
func TestAssignmentHandler_Move_RollsBackOnGatewayError(t *testing.T) {
	gateway := &mockGateway{mutateErr: errors.New("boom")}
	app, store := newTestApp(t, gateway)

	req := httptest.NewRequest("POST", "/assignments/move",
		strings.NewReader(`{"kind":"order","id":"o1","route":"B"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)

	var errResp ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&errResp))
	assert.True(t, errResp.Retryable)
	assert.Equal(t, "test-ray-id", errResp.RayID)

	// The optimistic assignment must have been reverted.
	route, routeErr := store.RouteOf(domain.ItemRef{Kind: domain.ItemKindOrder, ID: "o1"})
	require.NoError(t, routeErr)
	assert.Equal(t, domain.RouteUnassigned, route)
}

// TestAssignmentHandler_Move_UnknownRoute verifies the 422 mapping.
func TestAssignmentHandler_Move_UnknownRoute(t *testing.T) {
	app, _ := newTestApp(t, &mockGateway{})

	req := httptest.NewRequest("POST", "/assignments/move",
		strings.NewReader(`{"kind":"order","id":"o1","route":"Z"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

// TestAssignmentHandler_Move_UnknownItem verifies the 422 mapping.
func TestAssignmentHandler_Move_UnknownItem(t *testing.T) {
	app, _ := newTestApp(t, &mockGateway{})

	req := httptest.NewRequest("POST", "/assignments/move",
		strings.NewReader(`{"kind":"order","id":"ghost","route":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

// TestAssignmentHandler_Move_BadKind verifies kind validation.
func TestAssignmentHandler_Move_BadKind(t *testing.T) {
	app, _ := newTestApp(t, &mockGateway{})

	req := httptest.NewRequest("POST", "/assignments/move",
		strings.NewReader(`{"kind":"truck","id":"o1","route":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

// TestAssignmentHandler_Move_MissingID verifies ID validation.
func TestAssignmentHandler_Move_MissingID(t *testing.T) {
	app, _ := newTestApp(t, &mockGateway{})

	req := httptest.NewRequest("POST", "/assignments/move",
		strings.NewReader(`{"kind":"order","id":"","route":"A"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

// TestAssignmentHandler_List verifies the grouped read model.
func TestAssignmentHandler_List(t *testing.T) {
	app, _ := newTestApp(t, &mockGateway{})

	req := httptest.NewRequest("GET", "/assignments", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result AssignmentsResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))

	require.Contains(t, result.Routes, domain.RouteID("A"))
	require.Contains(t, result.Routes, domain.RouteUnassigned)
	assert.Len(t, result.Routes[domain.RouteID("A")], 1)
	assert.Len(t, result.Routes[domain.RouteUnassigned], 2)
}

// TestAssignmentHandler_Refresh verifies the reload round trip.
func TestAssignmentHandler_Refresh(t *testing.T) {
	gateway := &mockGateway{
		orders:  []domain.Order{{ID: "o9", Number: "2001", RouteID: "B"}},
		drivers: []domain.Driver{},
	}
	app, store := newTestApp(t, gateway)

	req := httptest.NewRequest("POST", "/assignments/refresh", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var result RefreshResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Orders)
	assert.Equal(t, 0, result.Drivers)

	// Previous items are gone after the reload.
	assert.False(t, store.Contains(domain.ItemRef{Kind: domain.ItemKindOrder, ID: "o1"}))
	assert.True(t, store.Contains(domain.ItemRef{Kind: domain.ItemKindOrder, ID: "o9"}))
}

// TestAssignmentHandler_Refresh_GatewayDown verifies the 502 mapping.
func TestAssignmentHandler_Refresh_GatewayDown(t *testing.T) {
	gateway := &mockGateway{listErr: errors.New("connection refused")}
	app, _ := newTestApp(t, gateway)

	req := httptest.NewRequest("POST", "/assignments/refresh", nil)
	resp, err := app.Test(req)

	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadGateway, resp.StatusCode)
}
