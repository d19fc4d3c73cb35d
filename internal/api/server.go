// Package api provides the HTTP REST API and WebSocket server for the
// aquaponics gateway.
//
// The server follows the same lifecycle pattern as other infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/akuaponik-iot/gateway/internal/access"
	"github.com/akuaponik-iot/gateway/internal/actuator"
	"github.com/akuaponik-iot/gateway/internal/auth"
	"github.com/akuaponik-iot/gateway/internal/farm"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/config"
	"github.com/akuaponik-iot/gateway/internal/infrastructure/logging"
	"github.com/akuaponik-iot/gateway/internal/telemetry"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// HealthChecker is implemented by the store, broker and mirror clients.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config config.APIConfig
	WS     config.WebSocketConfig
	Logger *logging.Logger

	Store  HealthChecker // required
	Broker HealthChecker // optional; nil reports the broker as disabled
	Mirror HealthChecker // optional; nil reports the InfluxDB mirror as disabled

	Accounts  *auth.Service
	Farms     farm.Repository
	Readings  telemetry.Repository
	Actuators *actuator.Service
	Access    *access.Service

	Hub     *Hub // If set, the server uses this hub instead of creating its own
	Version string
}

// Server is the HTTP API server for the gateway.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	logger    *logging.Logger
	store     HealthChecker
	broker    HealthChecker
	mirror    HealthChecker
	accounts  *auth.Service
	farms     farm.Repository
	readings  telemetry.Repository
	actuators *actuator.Service
	access    *access.Service
	version   string

	server      *http.Server
	listener    net.Listener
	hub         *Hub
	externalHub bool               // true if hub was injected externally
	cancel      context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, store, domain services)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	switch {
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	case deps.Store == nil:
		return nil, fmt.Errorf("store is required")
	case deps.Accounts == nil:
		return nil, fmt.Errorf("account service is required")
	case deps.Farms == nil:
		return nil, fmt.Errorf("farm repository is required")
	case deps.Readings == nil:
		return nil, fmt.Errorf("reading repository is required")
	case deps.Actuators == nil:
		return nil, fmt.Errorf("actuator service is required")
	case deps.Access == nil:
		return nil, fmt.Errorf("access service is required")
	}

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		logger:    deps.Logger,
		store:     deps.Store,
		broker:    deps.Broker,
		mirror:    deps.Mirror,
		accounts:  deps.Accounts,
		farms:     deps.Farms,
		readings:  deps.Readings,
		actuators: deps.Actuators,
		access:    deps.Access,
		version:   deps.Version,
	}

	// The hub is usually shared with the telemetry subscriber and the
	// actuator service, which broadcast through it.
	if deps.Hub != nil {
		s.hub = deps.Hub
		s.externalHub = true
	}

	return s, nil
}

// Start binds the listener and serves HTTP in a background goroutine.
//
// Parameters:
//   - ctx: Parent context for the hub; the listener is stopped by Close()
//
// Returns:
//   - error: If the address cannot be bound (port in use, etc.)
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	if s.hub == nil {
		s.hub = NewHub(s.wsCfg, s.logger)
		go s.hub.Run(srvCtx)
	}

	s.server = &http.Server{
		Addr:              net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port)),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	ln, err := net.Listen("tcp", s.server.Addr)
	if err != nil {
		s.cancel()
		return fmt.Errorf("binding %s: %w", s.server.Addr, err)
	}
	s.listener = ln

	s.logger.Info("API server listening", "address", ln.Addr().String())

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Addr returns the bound listener address, or "" before Start.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running and responsive.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}

	return nil
}
