package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"boxoffice/internal/config"
	"boxoffice/internal/external"
	"boxoffice/internal/handlers"
	"boxoffice/internal/handoff"
	"boxoffice/internal/messaging"
	"boxoffice/internal/metrics"
	"boxoffice/internal/middleware"
	"boxoffice/internal/service"
	"boxoffice/internal/session"

	"github.com/gin-gonic/gin"
)

// Server is the HTTP front for the booking flow
type Server struct {
	router   *gin.Engine
	config   *config.Config
	registry *session.Registry
	store    handoff.Store
	nats     *messaging.NATSClient
	services *service.Services
}

// NewServer wires the application together
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	theatreClient := external.NewTheatreClient(cfg.Theatre)

	// Redis keeps handoffs across restarts; without it the in-memory
	// store still supports the full flow within one process
	var store handoff.Store
	redisStore, err := handoff.NewRedisStore(cfg.Handoff)
	if err != nil {
		slog.Warn("Redis unavailable, using in-memory handoff store", "error", err)
		store = handoff.NewMemoryStore(cfg.Handoff.TTL)
	} else {
		store = redisStore
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		slog.Warn("NATS unavailable, event publishing disabled", "error", err)
		natsClient = messaging.Disabled()
	}

	registry := session.NewRegistry(cfg.Session)
	registry.Start()

	services := service.NewServices(theatreClient, registry, store, natsClient)

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())
	router.Use(middleware.Session())

	server := &Server{
		router:   router,
		config:   cfg,
		registry: registry,
		store:    store,
		nats:     natsClient,
		services: services,
	}

	server.setupRoutes()

	return server
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	{
		screenings := api.Group("/screenings")
		{
			screenings.GET("/:id", h.GetScreening)
			screenings.GET("/:id/seatmap", h.GetSeatMap)
			screenings.POST("/:id/seats/toggle", h.ToggleSeat)
			screenings.POST("/:id/seats/clear", h.ClearSeats)
			screenings.POST("/:id/checkout", h.StartCheckout)
			screenings.GET("/:id/checkout", h.GetCheckout)
			screenings.POST("/:id/bookings", h.CreateBooking)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
}

// healthCheck handles health check requests
func (s *Server) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "boxoffice-api",
		"version": "1.0.0",
	})
}

// Run starts the HTTP server
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter returns the router for testing
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes connections and stops background work
func (s *Server) Cleanup() error {
	s.registry.Stop()

	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if closer, ok := s.store.(*handoff.RedisStore); ok {
		if err := closer.Close(); err != nil {
			slog.Error("Error closing Redis connection", "error", err)
			return err
		}
	}

	return nil
}
