package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dispatch-board/internal/core/config"
	"dispatch-board/internal/features/assignment/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) config.DispatchAPIConfig {
	return config.DispatchAPIConfig{
		URL:               url,
		Token:             "tok_test",
		RequestsPerSecond: 100,
	}
}

// TestDispatchAPIAdapter_ListOrders verifies order fetching and mapping.
func TestDispatchAPIAdapter_ListOrders(t *testing.T) {
	mockResponse := `[
		{
			"id": "ord-1",
			"number": "1042",
			"customer_name": "María García",
			"address": "Calle 45 #12-30",
			"total": 85000,
			"route_id": "B",
			"latitude": 4.6097,
			"longitude": -74.0817
		},
		{
			"id": "ord-2",
			"number": "1043",
			"customer_name": "Carlos Ruiz",
			"address": "Carrera 7 #80-20",
			"total": 32500,
			"route_id": "",
			"latitude": null,
			"longitude": null
		}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/orders", r.URL.Path)
		assert.Equal(t, "Bearer tok_test", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(mockResponse))
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	orders, err := adapter.ListOrders(context.Background())

	require.NoError(t, err)
	require.Len(t, orders, 2)

	assert.Equal(t, "ord-1", orders[0].ID)
	assert.Equal(t, "1042", orders[0].Number)
	assert.Equal(t, "María García", orders[0].CustomerName)
	assert.Equal(t, 85000.0, orders[0].Total)
	assert.Equal(t, domain.RouteID("B"), orders[0].RouteID)
	require.NotNil(t, orders[0].Location)
	assert.InDelta(t, 4.6097, orders[0].Location.Lat, 0.0001)
	assert.InDelta(t, -74.0817, orders[0].Location.Lng, 0.0001)

	assert.Equal(t, domain.RouteUnassigned, orders[1].RouteID)
	assert.Nil(t, orders[1].Location)
}

// TestDispatchAPIAdapter_ListDrivers verifies driver fetching and mapping.
func TestDispatchAPIAdapter_ListDrivers(t *testing.T) {
	mockResponse := `[
		{
			"id": "drv-1",
			"code": "D-07",
			"full_name": "Pedro López",
			"vehicle_type": "moto",
			"phone": "3001234567",
			"available": true,
			"route_id": "A"
		}
	]`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/drivers", r.URL.Path)
		assert.Equal(t, "Bearer tok_test", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		w.Write([]byte(mockResponse))
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	drivers, err := adapter.ListDrivers(context.Background())

	require.NoError(t, err)
	require.Len(t, drivers, 1)
	assert.Equal(t, "drv-1", drivers[0].ID)
	assert.Equal(t, "D-07", drivers[0].Code)
	assert.Equal(t, "Pedro López", drivers[0].FullName)
	assert.True(t, drivers[0].Available)
	assert.Equal(t, domain.RouteID("A"), drivers[0].RouteID)
}

// TestDispatchAPIAdapter_SetOrderRoute verifies the PUT body and path.
func TestDispatchAPIAdapter_SetOrderRoute(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/v1/orders/ord-9/route", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body routeUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "C", body.RouteID)

		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	err := adapter.SetOrderRoute(context.Background(), "ord-9", "C")

	assert.NoError(t, err)
}

// TestDispatchAPIAdapter_SetDriverRoute_Unassigned verifies the unassigned
// pseudo-route travels as an empty route_id.
func TestDispatchAPIAdapter_SetDriverRoute_Unassigned(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/drivers/drv-3/route", r.URL.Path)

		var body routeUpdateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Empty(t, body.RouteID)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	err := adapter.SetDriverRoute(context.Background(), "drv-3", domain.RouteUnassigned)

	assert.NoError(t, err)
}

// TestDispatchAPIAdapter_SetOrderRoute_ServerError verifies non-2xx responses fail.
func TestDispatchAPIAdapter_SetOrderRoute_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	err := adapter.SetOrderRoute(context.Background(), "ord-1", "A")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 500")
}

// TestDispatchAPIAdapter_ListOrders_BadJSON verifies decode failures are reported.
func TestDispatchAPIAdapter_ListOrders_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("not json"))
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	_, err := adapter.ListOrders(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode")
}

// TestDispatchAPIAdapter_HealthCheck verifies the health endpoint round trip.
func TestDispatchAPIAdapter_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/health", r.URL.Path)
		assert.Equal(t, "Bearer tok_test", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	assert.NoError(t, adapter.HealthCheck())
}

// TestDispatchAPIAdapter_HealthCheck_Unauthorized verifies auth failures surface.
func TestDispatchAPIAdapter_HealthCheck_Unauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	adapter := NewDispatchAPIAdapter(testConfig(server.URL))
	err := adapter.HealthCheck()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status: 401")
}
