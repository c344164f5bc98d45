package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dispatch-board/internal/core/config"
	"dispatch-board/internal/core/httpclient"
	"dispatch-board/internal/features/assignment/domain"

	"golang.org/x/time/rate"
)

// DispatchAPIAdapter implements the BackendGateway interface using the
// dispatch REST API that owns orders, drivers and route assignments.
type DispatchAPIAdapter struct {
	// client is the HTTP client used for API requests.
	client *http.Client
	// config holds the dispatch API connection details.
	config config.DispatchAPIConfig
	// limiter throttles outbound calls so bursts of board activity
	// do not trip the API's rate limiting.
	limiter *rate.Limiter
}

// NewDispatchAPIAdapter creates a new instance of DispatchAPIAdapter.
func NewDispatchAPIAdapter(cfg config.DispatchAPIConfig) *DispatchAPIAdapter {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 10
	}

	return &DispatchAPIAdapter{
		client:  httpclient.NewClient(10 * time.Second),
		config:  cfg,
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
	}
}

// ListOrders fetches the active orders and maps them to domain entities.
func (a *DispatchAPIAdapter) ListOrders(ctx context.Context) ([]domain.Order, error) {
	var dtos []dispatchOrder
	if err := a.getJSON(ctx, "/api/v1/orders", &dtos); err != nil {
		return nil, err
	}

	orders := make([]domain.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, mapOrder(dto))
	}
	return orders, nil
}

// ListDrivers fetches the driver roster and maps it to domain entities.
func (a *DispatchAPIAdapter) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	var dtos []dispatchDriver
	if err := a.getJSON(ctx, "/api/v1/drivers", &dtos); err != nil {
		return nil, err
	}

	drivers := make([]domain.Driver, 0, len(dtos))
	for _, dto := range dtos {
		drivers = append(drivers, mapDriver(dto))
	}
	return drivers, nil
}

// SetOrderRoute persists an order route assignment on the dispatch API.
func (a *DispatchAPIAdapter) SetOrderRoute(ctx context.Context, orderID string, route domain.RouteID) error {
	path := fmt.Sprintf("/api/v1/orders/%s/route", orderID)
	return a.putRoute(ctx, path, route)
}

// SetDriverRoute persists a driver route assignment on the dispatch API.
func (a *DispatchAPIAdapter) SetDriverRoute(ctx context.Context, driverID string, route domain.RouteID) error {
	path := fmt.Sprintf("/api/v1/drivers/%s/route", driverID)
	return a.putRoute(ctx, path, route)
}

// HealthCheck verifies that the dispatch API is reachable and the token is valid.
func (a *DispatchAPIAdapter) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	req, err := a.newRequest(ctx, http.MethodGet, "/api/v1/health", nil)
	if err != nil {
		return fmt.Errorf("health check failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check failed with status: %d", resp.StatusCode)
	}

	return nil
}

// getJSON performs an authenticated GET and decodes the response body.
func (a *DispatchAPIAdapter) getJSON(ctx context.Context, path string, out interface{}) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	req, err := a.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("dispatch API returned status: %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// putRoute performs an authenticated PUT carrying the new route assignment.
// The unassigned pseudo-route travels as an empty route_id, which the API
// interprets as clearing the assignment.
func (a *DispatchAPIAdapter) putRoute(ctx context.Context, path string, route domain.RouteID) error {
	if err := a.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter wait failed: %w", err)
	}

	wireRoute := string(route)
	if route == domain.RouteUnassigned {
		wireRoute = ""
	}

	body, err := json.Marshal(routeUpdateRequest{RouteID: wireRoute})
	if err != nil {
		return fmt.Errorf("failed to encode request body: %w", err)
	}

	req, err := a.newRequest(ctx, http.MethodPut, path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("dispatch API returned status: %d", resp.StatusCode)
	}

	return nil
}

// newRequest builds a request against the configured base URL with bearer auth.
func (a *DispatchAPIAdapter) newRequest(ctx context.Context, method, path string, body *bytes.Reader) (*http.Request, error) {
	url := a.config.URL + path

	var req *http.Request
	var err error
	if body != nil {
		req, err = http.NewRequestWithContext(ctx, method, url, body)
	} else {
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
	}
	if err != nil {
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+a.config.Token)
	return req, nil
}

// mapOrder converts a raw dispatch API order into a domain Order entity.
func mapOrder(dto dispatchOrder) domain.Order {
	order := domain.Order{
		ID:           dto.ID,
		Number:       dto.Number,
		CustomerName: dto.CustomerName,
		Address:      dto.Address,
		Total:        dto.Total,
		RouteID:      domain.NormalizeRoute(dto.RouteID),
	}

	if dto.Latitude != nil && dto.Longitude != nil {
		order.Location = &domain.Coordinate{
			Lat: *dto.Latitude,
			Lng: *dto.Longitude,
		}
	}

	return order
}

// mapDriver converts a raw dispatch API driver into a domain Driver entity.
func mapDriver(dto dispatchDriver) domain.Driver {
	return domain.Driver{
		ID:          dto.ID,
		Code:        dto.Code,
		FullName:    dto.FullName,
		VehicleType: dto.VehicleType,
		Phone:       dto.Phone,
		Available:   dto.Available,
		RouteID:     domain.NormalizeRoute(dto.RouteID),
	}
}

// internal structs for mapping

// dispatchOrder represents the JSON structure of an order from the dispatch API.
type dispatchOrder struct {
	// ID is the unique order ID.
	ID string `json:"id"`
	// Number is the human-facing order number.
	Number string `json:"number"`
	// CustomerName is the recipient's display name.
	CustomerName string `json:"customer_name"`
	// Address is the delivery address.
	Address string `json:"address"`
	// Total is the order total amount.
	Total float64 `json:"total"`
	// RouteID is the assigned route, empty when unassigned.
	RouteID string `json:"route_id"`
	// Latitude is the geocoded delivery latitude, null when not geocoded.
	Latitude *float64 `json:"latitude"`
	// Longitude is the geocoded delivery longitude, null when not geocoded.
	Longitude *float64 `json:"longitude"`
}

// dispatchDriver represents the JSON structure of a driver from the dispatch API.
type dispatchDriver struct {
	// ID is the unique driver ID.
	ID string `json:"id"`
	// Code is the short driver code shown on the board.
	Code string `json:"code"`
	// FullName is the driver's full name.
	FullName string `json:"full_name"`
	// VehicleType describes the vehicle (moto, carro, bici).
	VehicleType string `json:"vehicle_type"`
	// Phone is the driver's contact number.
	Phone string `json:"phone"`
	// Available indicates whether the driver can take routes today.
	Available bool `json:"available"`
	// RouteID is the assigned route, empty when unassigned.
	RouteID string `json:"route_id"`
}

// routeUpdateRequest is the PUT body for route assignment changes.
type routeUpdateRequest struct {
	// RouteID is the target route, empty to clear the assignment.
	RouteID string `json:"route_id"`
}
