package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AgentDesk/backend/internal/api/http"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/api/middleware"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/api/ws"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentDesk/backend/internal/infrastructure/tracing"
)

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	desktop *Desktop
	hub     *ws.Hub
	logger  *logging.Logger
	config  *config.Config
	metrics *monitoring.Metrics
	detach  func()
}

// NewLogger builds the logger described by cfg
func NewLogger(cfg config.LogConfig) *logging.Logger {
	level := cfg.Level
	if cfg.Development {
		level = "debug"
	}
	logger, err := logging.New(logging.Config{Level: level, Development: cfg.Development})
	if err == nil {
		return logger
	}
	// unknown level name; fall back to the default level
	if logger, err = logging.New(logging.Config{Development: cfg.Development}); err == nil {
		return logger
	}
	return logging.NewNop()
}

// NewServer creates a new server instance
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	logger := NewLogger(cfg.Logging)
	logger.Info("Initializing AgentDesk server",
		zap.String("port", cfg.Server.Port),
		zap.String("db", cfg.Storage.Path),
	)

	metrics := monitoring.NewMetrics()

	desktop, err := OpenDesktop(ctx, cfg, logger, metrics)
	if err != nil {
		return nil, err
	}

	return newServer(cfg, desktop, logger, metrics), nil
}

func newServer(cfg *config.Config, desktop *Desktop, logger *logging.Logger, metrics *monitoring.Metrics) *Server {
	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	tracer := tracing.New(logger.Component("http"), 2*time.Second)

	// Add middleware
	router.Use(gin.Recovery())
	router.Use(tracing.HTTPMiddleware(tracer))
	router.Use(monitoring.Middleware(metrics))
	router.Use(middleware.CORS(cfg.Server.Origins))
	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(apihttp.Deps{
		Windows:  desktop.Windows,
		Chat:     desktop.Chat,
		Branches: desktop.Branches,
		Drags:    desktop.Drags,
		Settings: desktop.Settings,
		Renderer: desktop.Renderer,
		Metrics:  metrics,
		Logger:   logger.Component("api"),
		Circuits: desktop.Client,
	})
	handlers.Register(router)

	hub := ws.NewHub(desktop.Windows).
		WithMetrics(metrics).
		WithLogger(logger.Component("ws"))
	router.GET("/stream", hub.HandleConnection)

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/log/level", gin.WrapH(logger.LevelHandler()))
	router.PUT("/log/level", gin.WrapH(logger.LevelHandler()))

	logger.Info("Server initialized successfully")

	return &Server{
		router:  router,
		desktop: desktop,
		hub:     hub,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
		detach:  hub.Attach(desktop.Bus),
	}
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	addr := s.config.Server.Host + ":" + s.config.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting HTTP server", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	return nil
}

// Close releases the desktop and flushes logs
func (s *Server) Close() error {
	if s.detach != nil {
		s.detach()
	}
	err := s.desktop.Close()
	if err != nil {
		s.logger.Error("Failed to close store", zap.Error(err))
	}

	// Sync logger before exit
	_ = s.logger.Sync()
	return err
}
