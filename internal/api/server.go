// Package api provides the HTTP REST API for luxd.
//
// It exposes schedule rule management, sun configuration, brightness
// preview, monitor listing, and system status endpoints to local
// clients (CLI tools, tray applets, dashboards).
//
// The server follows the same lifecycle pattern as the other
// infrastructure components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lumatech/luxd/internal/infrastructure/config"
	"github.com/lumatech/luxd/internal/infrastructure/logging"
	"github.com/lumatech/luxd/internal/process"
	"github.com/lumatech/luxd/internal/schedule"
)

// gracefulShutdownTimeout bounds the wait for in-flight requests on
// shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// MonitorDirectory is the read view of known monitors the API serves.
type MonitorDirectory interface {
	Monitors() []string
	Brightness(monitorID string) (int, bool)
	Name(monitorID string) (string, bool)
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.Config
	Logger     *logging.Logger
	Store      *schedule.Store
	Evaluator  *schedule.Evaluator
	Runner     *schedule.Runner
	Monitors   MonitorDirectory
	Events     schedule.EventStore // optional
	Supervisor *process.Supervisor // optional, only when the bridge is managed
	Location   *time.Location
	Version    string
}

// Server is the HTTP API server for luxd.
type Server struct {
	cfg        config.Config
	logger     *logging.Logger
	store      *schedule.Store
	evaluator  *schedule.Evaluator
	runner     *schedule.Runner
	monitors   MonitorDirectory
	events     schedule.EventStore
	supervisor *process.Supervisor
	location   *time.Location
	version    string
	started    time.Time
	server     *http.Server
}

// New creates a new API server with the given dependencies.
// The server does not listen until Start is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("schedule store is required")
	}
	if deps.Runner == nil {
		return nil, fmt.Errorf("schedule runner is required")
	}
	if deps.Monitors == nil {
		return nil, fmt.Errorf("monitor directory is required")
	}

	loc := deps.Location
	if loc == nil {
		loc = time.Local
	}
	evaluator := deps.Evaluator
	if evaluator == nil {
		evaluator = schedule.NewEvaluator(deps.Store)
	}

	return &Server{
		cfg:        deps.Config,
		logger:     deps.Logger,
		store:      deps.Store,
		evaluator:  evaluator,
		runner:     deps.Runner,
		monitors:   deps.Monitors,
		events:     deps.Events,
		supervisor: deps.Supervisor,
		location:   loc,
		version:    deps.Version,
	}, nil
}

// Start begins listening for HTTP connections in a background
// goroutine. Stop with Close.
func (s *Server) Start(_ context.Context) error {
	s.started = time.Now()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.API.Host, s.cfg.API.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       s.cfg.GetReadTimeout(),
		ReadHeaderTimeout: s.cfg.GetReadTimeout(),
		WriteTimeout:      s.cfg.GetWriteTimeout(),
		IdleTimeout:       s.cfg.GetIdleTimeout(),
	}

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	s.logger.Info("API server listening", "address", s.server.Addr)
	return nil
}

// Close gracefully shuts down the API server, waiting up to ten
// seconds for in-flight requests.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server has been started.
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
