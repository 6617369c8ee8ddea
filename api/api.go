package api

import (
	"context"
	"log/slog"
	"net"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"

	"github.com/papercomputeco/agentui/pkg/event"
	"github.com/papercomputeco/agentui/pkg/prompt"
	"github.com/papercomputeco/agentui/pkg/storage"
)

const shutdownTimeout = 10 * time.Second

// Server is the AG-UI HTTP server.
type Server struct {
	config Config
	driver storage.Driver
	logger *slog.Logger
	app    *fiber.App

	// ctx is the parent of every stream; Shutdown cancels it so open
	// streams stop pulling from their backends.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new API server.
// The driver is injected to allow sharing with the transcript worker pool.
func NewServer(config Config, driver storage.Driver, logger *slog.Logger) *Server {
	if config.Registry == nil {
		config.Registry = event.NewRegistry()
	}
	if config.Prompt == nil {
		config.Prompt = prompt.NewBuilder(config.Registry)
	}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	// Any origin, any method: the protocol channel is public.
	app.Use(cors.New())

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: config,
		driver: driver,
		logger: logger,
		app:    app,
		ctx:    ctx,
		cancel: cancel,
	}

	app.Get("/", s.handleRoot)
	app.Get("/ping", s.handlePing)
	app.Post("/agent", s.handleAgent)
	app.Get("/components", s.handleComponents)
	app.Get("/transcripts", s.handleListTranscripts)
	app.Get("/transcripts/:id", s.handleGetTranscript)

	if config.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(config.Metrics.Handler()))
	}

	return s
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"backend", s.backendName(),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// RunWithListener starts the API server using the provided listener.
func (s *Server) RunWithListener(listener net.Listener) error {
	s.logger.Info("starting API server",
		"listen", listener.Addr().String(),
		"backend", s.backendName(),
	)
	return s.app.Listener(listener)
}

// Shutdown cancels open streams and gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.ShutdownWithTimeout(shutdownTimeout)
}

func (s *Server) backendName() string {
	if s.config.Backend == nil {
		return "none"
	}
	return s.config.Backend.Name()
}
