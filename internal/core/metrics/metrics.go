package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	// Registry is the dedicated Prometheus registry for the board API.
	Registry = prometheus.NewRegistry()

	// Moves counts assignment move outcomes by item kind and result
	// (committed, rolled_back, rejected).
	Moves = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "board_moves_total", Help: "Assignment moves by kind and result."},
		[]string{"kind", "result"},
	)

	// DragSessions tracks the number of active drag sessions (0 or 1).
	DragSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "board_drag_sessions", Help: "Active drag sessions."},
	)

	// Markers tracks the number of markers currently rendered on the map.
	Markers = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "board_map_markers", Help: "Markers currently rendered."},
	)
)

var regOnce sync.Once

// RegisterDefault registers the board collectors plus the standard Go and
// process collectors on the dedicated registry.
func RegisterDefault() {
	regOnce.Do(func() {
		Registry.MustRegister(Moves)
		Registry.MustRegister(DragSessions)
		Registry.MustRegister(Markers)
		Registry.MustRegister(collectors.NewGoCollector())
		Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	})
}
