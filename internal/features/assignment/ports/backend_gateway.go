package ports

import (
	"context"

	"dispatch-board/internal/features/assignment/domain"
)

// BackendGateway is the driven port for the remote delivery backend that owns
// the authoritative order/driver records.
type BackendGateway interface {
	// ListOrders fetches the orders currently visible to dispatch.
	ListOrders(ctx context.Context) ([]domain.Order, error)

	// ListDrivers fetches today's driver roster.
	ListDrivers(ctx context.Context) ([]domain.Driver, error)

	// SetOrderRoute persists an order's route assignment. RouteUnassigned
	// clears the assignment (null on the wire).
	SetOrderRoute(ctx context.Context, orderID string, route domain.RouteID) error

	// SetDriverRoute persists a driver's route assignment. RouteUnassigned
	// clears the assignment (null on the wire).
	SetDriverRoute(ctx context.Context, driverID string, route domain.RouteID) error
}
