package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lumenweave/lumenweave-core/internal/auth"
	"github.com/lumenweave/lumenweave-core/internal/compiler"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/config"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/logging"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/mqtt"
	"github.com/lumenweave/lumenweave-core/internal/infrastructure/tsdb"
	"github.com/lumenweave/lumenweave-core/internal/rig"
	"github.com/lumenweave/lumenweave-core/internal/template"
	"github.com/lumenweave/lumenweave-core/internal/transition"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config    config.APIConfig
	WS        config.WebSocketConfig
	Security  config.SecurityConfig
	Logger    *logging.Logger
	Templates *template.Registry
	Rig       *rig.Rig
	Compiler  *compiler.Compiler
	Planner   *transition.Planner
	Blender   *transition.Blender
	Users     auth.UserRepository
	MQTT      *mqtt.Client // optional; renderer fan-out disabled when nil
	TSDB      *tsdb.Client // optional; compile telemetry disabled when nil
	ShowID    string
	Version   string
}

// Server is the HTTP API server for Lumenweave Core.
//
// It manages the HTTP listener, routes, middleware, and WebSocket hub.
// The server is created with New() and started with Start().
type Server struct {
	cfg       config.APIConfig
	wsCfg     config.WebSocketConfig
	secCfg    config.SecurityConfig
	logger    *logging.Logger
	templates *template.Registry
	rig       *rig.Rig
	compiler  *compiler.Compiler
	planner   *transition.Planner
	blender   *transition.Blender
	users     auth.UserRepository
	mqtt      *mqtt.Client
	tsdb      *tsdb.Client
	showID    string
	version   string
	server    *http.Server
	hub       *Hub
	tickets   *ticketStore
	startedAt time.Time
	cancel    context.CancelFunc // cancels background goroutines on Close()
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Templates == nil {
		return nil, fmt.Errorf("template registry is required")
	}
	if deps.Rig == nil {
		return nil, fmt.Errorf("rig is required")
	}
	if deps.Compiler == nil {
		return nil, fmt.Errorf("compiler is required")
	}
	if deps.Users == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	// MQTT and TSDB are optional - compiles still run, results are only
	// returned over HTTP/WebSocket without them.

	s := &Server{
		cfg:       deps.Config,
		wsCfg:     deps.WS,
		secCfg:    deps.Security,
		logger:    deps.Logger,
		templates: deps.Templates,
		rig:       deps.Rig,
		compiler:  deps.Compiler,
		planner:   deps.Planner,
		blender:   deps.Blender,
		users:     deps.Users,
		mqtt:      deps.MQTT,
		tsdb:      deps.TSDB,
		showID:    deps.ShowID,
		version:   deps.Version,
		tickets:   newTicketStore(),
	}

	if s.planner == nil {
		s.planner = transition.NewPlanner(transition.WithPlannerLogger(deps.Logger))
	}
	if s.blender == nil {
		s.blender = transition.NewBlender(transition.WithBlenderLogger(deps.Logger))
	}

	return s, nil
}

// Start begins listening for HTTP connections.
//
// It starts the WebSocket hub and ticket cleanup, builds the router, and
// launches the HTTP listener in a background goroutine. The server is
// stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	// Internal context so Close() can stop background goroutines
	// independently of the parent context.
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)

	s.hub = NewHub(s.wsCfg, s.logger)
	go s.hub.Run(srvCtx)

	go s.tickets.cleanLoop(srvCtx)

	s.startedAt = time.Now()

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete, then
// forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}

	// Cancel background goroutines (hub, ticket cleanup)
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
