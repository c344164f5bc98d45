package handler

import (
	"net/http"

	"dispatch-board/internal/core/logger"
	"dispatch-board/internal/features/mapview/ports"
	"dispatch-board/internal/features/mapview/service"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// MapHandler serves the map projection: markers, legend and the cached
// snapshot for cold console loads.
type MapHandler struct {
	synchronizer *service.Synchronizer
	snapshots    ports.SnapshotRepository
}

// NewMapHandler creates a new MapHandler. snapshots may be nil when no cache
// is configured; GET /map/snapshot then serves the live state.
func NewMapHandler(s *service.Synchronizer, snapshots ports.SnapshotRepository) *MapHandler {
	return &MapHandler{
		synchronizer: s,
		snapshots:    snapshots,
	}
}

// GetMarkers handles GET /map/markers.
// @Summary Current map markers
// @Description One marker per located order, colored by its current route.
// @Tags Map
// @Produce json
// @Success 200 {array} domain.Marker
// @Router /map/markers [get]
func (h *MapHandler) GetMarkers(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.synchronizer.Markers())
}

// GetLegend handles GET /map/legend.
// @Summary Map legend
// @Description Per-route colors and order counts plus the unassigned count.
// @Tags Map
// @Produce json
// @Success 200 {object} domain.Legend
// @Router /map/legend [get]
func (h *MapHandler) GetLegend(c *fiber.Ctx) error {
	return c.Status(http.StatusOK).JSON(h.synchronizer.Legend())
}

// GetSnapshot handles GET /map/snapshot.
// @Summary Last published map snapshot
// @Description Cached markers+legend for painting the map before the first live fetch.
// @Tags Map
// @Produce json
// @Success 200 {object} domain.MapSnapshot
// @Failure 404 {object} map[string]string
// @Router /map/snapshot [get]
func (h *MapHandler) GetSnapshot(c *fiber.Ctx) error {
	if h.snapshots == nil {
		return c.Status(http.StatusOK).JSON(h.synchronizer.Snapshot())
	}

	snapshot, err := h.snapshots.Load(c.Context())
	if err != nil {
		logger.Get().Error("Failed to load map snapshot", zap.Error(err))
		return c.Status(http.StatusInternalServerError).JSON(fiber.Map{
			"error": "Internal server error",
		})
	}
	if snapshot == nil {
		return c.Status(http.StatusNotFound).JSON(fiber.Map{
			"error": "No snapshot published yet",
		})
	}

	return c.Status(http.StatusOK).JSON(snapshot)
}
