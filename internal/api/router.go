package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/akuaponik-iot/gateway/internal/actuator"
)

// healthCheckTimeout bounds the dependency checks made by /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware())
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(middleware.Compress(5, "application/json"))

	r.Get("/health", s.handleHealth)

	// Accounts
	r.Post("/register", s.handleRegister)
	r.Post("/login", s.handleLogin)
	r.Get("/users", s.handleListUsers)

	// Farms and ponds
	r.Get("/data/{username}", s.handleListFarms)
	r.Route("/akuaponik", func(r chi.Router) {
		r.Post("/", s.handleCreateFarm)
		r.Delete("/by-name/{nama_farm}", s.handleDeleteFarmsByName)

		r.Route("/{idakuaponik}", func(r chi.Router) {
			r.Get("/", s.handleGetFarm)
			r.Put("/", s.handleUpdateFarm)
			r.Delete("/", s.handleDeleteFarm)
		})
	})
	r.Get("/kolam/{idakuaponik}", s.handleListPonds)
	r.Post("/kolam", s.handleCreatePond)

	// Telemetry
	r.Get("/sensor/{idkolam}", s.handleListReadings)

	// Actuators
	for _, kind := range actuator.Kinds {
		r.Get("/"+string(kind)+"/{idkolam}", s.handleActuatorHistory(kind))
		r.Post("/"+string(kind)+"/{idkolam}", s.handleActuatorCommand(kind))
	}

	// Access requests
	r.Post("/request-access", s.handleRequestAccess)
	r.Put("/update-access/{idaccess}", s.handleUpdateAccess)
	r.Get("/access-requests", s.handleListAccessRequests)

	// Live feed
	r.Get("/ws", s.handleWebSocket)

	return r
}

// handleHealth reports the server version and the state of the store,
// broker and mirror. Only an unreachable store makes the gateway
// unhealthy; the optional parts only degrade it.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	status, code := "ok", http.StatusOK

	database := "ok"
	if err := s.store.HealthCheck(ctx); err != nil {
		s.logger.Warn("health check: store unavailable", "error", err)
		database = "unavailable"
		status, code = "unavailable", http.StatusServiceUnavailable
	}

	degrade := func() {
		if code == http.StatusOK {
			status = "degraded"
		}
	}

	broker := "disabled"
	if s.broker != nil {
		broker = "connected"
		if err := s.broker.HealthCheck(ctx); err != nil {
			broker = "disconnected"
			degrade()
		}
	}

	mirror := "disabled"
	if s.mirror != nil {
		mirror = "ok"
		if err := s.mirror.HealthCheck(ctx); err != nil {
			s.logger.Warn("health check: influxdb unavailable", "error", err)
			mirror = "unavailable"
			degrade()
		}
	}

	writeJSON(w, code, map[string]any{
		"status":   status,
		"version":  s.version,
		"database": database,
		"mqtt":     broker,
		"influxdb": mirror,
	})
}
