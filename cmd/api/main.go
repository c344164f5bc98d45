package main

import (
	"context"
	"log"
	"time"

	"dispatch-board/internal/core/cache"
	"dispatch-board/internal/core/config"
	"dispatch-board/internal/core/logger"
	"dispatch-board/internal/core/metrics"
	"dispatch-board/internal/core/server"
	assignmentadapter "dispatch-board/internal/features/assignment/adapters"
	assignmentdomain "dispatch-board/internal/features/assignment/domain"
	assignmenthandler "dispatch-board/internal/features/assignment/handler"
	assignmentservice "dispatch-board/internal/features/assignment/service"
	boardhandler "dispatch-board/internal/features/board/handler"
	boardservice "dispatch-board/internal/features/board/service"
	draghandler "dispatch-board/internal/features/dragdrop/handler"
	dragservice "dispatch-board/internal/features/dragdrop/service"
	eventshandler "dispatch-board/internal/features/events/handler"
	eventsservice "dispatch-board/internal/features/events/service"
	mapviewadapter "dispatch-board/internal/features/mapview/adapters"
	mapviewdomain "dispatch-board/internal/features/mapview/domain"
	mapviewhandler "dispatch-board/internal/features/mapview/handler"
	mapviewports "dispatch-board/internal/features/mapview/ports"
	mapviewservice "dispatch-board/internal/features/mapview/service"

	"go.uber.org/zap"
)

// @title Dispatch Board API
// @version 1.0
// @description Route assignment and map visualization API for the delivery operations console.
// @contact.name API Support
// @contact.email support@dispatchboard.local
// @license.name MIT
// @host localhost:8080
// @BasePath /
func main() {
	cfg, err := config.Load(".")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Sync()

	l := logger.Get()
	l.Info("Application starting",
		zap.String("environment", cfg.Environment),
		zap.String("log_level", cfg.LogLevel),
	)

	metrics.RegisterDefault()

	// Initialize Dispatch API Adapter and run Health Check
	gateway := assignmentadapter.NewDispatchAPIAdapter(cfg.DispatchAPI)
	if err := gateway.HealthCheck(); err != nil {
		l.Fatal("Dispatch API Health Check Failed", zap.Error(err))
	}
	l.Info("Dispatch API connection verified")

	registry, err := assignmentdomain.NewRouteRegistry(cfg.Board.Routes())
	if err != nil {
		l.Fatal("Invalid route configuration", zap.Error(err))
	}

	// Initialize Assignment Store & Drag Coordinator
	store := assignmentservice.NewAssignmentStore(gateway, registry)
	coordinator := dragservice.NewCoordinator(store, registry, laneAccepts(cfg.Board.LaneAccepts))

	// Initialize Map Synchronizer, with Redis snapshot publishing when configured
	var snapshots mapviewports.SnapshotRepository
	if cfg.Redis.URL != "" {
		redisCache, err := cache.NewRedisAdapter(cfg.Redis.URL)
		if err != nil {
			l.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer redisCache.Close()
		snapshots = mapviewadapter.NewRedisSnapshotRepository(
			redisCache,
			time.Duration(cfg.Redis.SnapshotTTLSeconds)*time.Second,
		)
		l.Info("Map snapshot publishing enabled")
	}

	palette := mapviewdomain.NewPalette(registry, mapviewdomain.DefaultPalette)
	synchronizer := mapviewservice.NewSynchronizer(registry, palette, snapshots)

	// Initialize SSE Broker
	broker := eventsservice.NewBroker()

	// Listeners must observe the initial load, so they subscribe first.
	store.Subscribe(coordinator)
	store.Subscribe(synchronizer)
	store.Subscribe(broker)

	if err := loadInitial(store, gateway); err != nil {
		l.Fatal("Failed to load initial state", zap.Error(err))
	}
	l.Info("Initial state loaded",
		zap.Int("orders", len(store.Orders())),
		zap.Int("drivers", len(store.Drivers())),
	)

	// Initialize Handlers
	assignmentHdl := assignmenthandler.NewAssignmentHandler(store, gateway)
	dragHdl := draghandler.NewDragDropHandler(coordinator)
	boardHdl := boardhandler.NewBoardHandler(boardservice.NewBoardService(store, coordinator))
	mapHdl := mapviewhandler.NewMapHandler(synchronizer, snapshots)
	eventsHdl := eventshandler.NewEventsHandler(broker)

	srv := server.New(cfg)

	// Register Routes
	srv.App.Get("/assignments", assignmentHdl.List)
	srv.App.Post("/assignments/move", assignmentHdl.Move)
	srv.App.Post("/assignments/refresh", assignmentHdl.Refresh)
	srv.App.Get("/board", boardHdl.GetBoard)
	srv.App.Post("/drag/start", dragHdl.Start)
	srv.App.Post("/drag/hover", dragHdl.HoverEnter)
	srv.App.Post("/drag/leave", dragHdl.HoverLeave)
	srv.App.Post("/drag/drop", dragHdl.Drop)
	srv.App.Post("/drag/cancel", dragHdl.Cancel)
	srv.App.Get("/drag/state", dragHdl.State)
	srv.App.Get("/map/markers", mapHdl.GetMarkers)
	srv.App.Get("/map/legend", mapHdl.GetLegend)
	srv.App.Get("/map/snapshot", mapHdl.GetSnapshot)
	srv.App.Get("/events", eventsHdl.Stream)

	if err := srv.Run(); err != nil {
		l.Fatal("Server failed to start", zap.Error(err))
	}
}

// loadInitial pulls the current orders and drivers from the dispatch API into
// the store.
func loadInitial(store *assignmentservice.AssignmentStore, gateway *assignmentadapter.DispatchAPIAdapter) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	orders, err := gateway.ListOrders(ctx)
	if err != nil {
		return err
	}
	drivers, err := gateway.ListDrivers(ctx)
	if err != nil {
		return err
	}

	store.LoadInitial(orders, drivers)
	return nil
}

// laneAccepts maps the LANE_ACCEPTS setting to item kinds. Unknown values
// fall back to both kinds.
func laneAccepts(setting string) []assignmentdomain.ItemKind {
	switch setting {
	case "order":
		return []assignmentdomain.ItemKind{assignmentdomain.ItemKindOrder}
	case "driver":
		return []assignmentdomain.ItemKind{assignmentdomain.ItemKindDriver}
	default:
		return []assignmentdomain.ItemKind{assignmentdomain.ItemKindOrder, assignmentdomain.ItemKindDriver}
	}
}
