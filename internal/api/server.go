package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/resistanceisuseless/subrecon/internal/config"
	"github.com/resistanceisuseless/subrecon/internal/enumeration"
)

const (
	maxBodyBytes    = 64 << 10
	shutdownTimeout = 10 * time.Second
)

// Enumerator runs one enumeration per request.
type Enumerator interface {
	Enumerate(ctx context.Context, req enumeration.Request) (*enumeration.Result, error)
}

type Server struct {
	router     *gin.Engine
	config     *config.Config
	enumerator Enumerator
	limiters   *rateLimiterMap
	logger     *zap.Logger
	version    string
}

func New(cfg *config.Config, enumerator Enumerator, logger *zap.Logger, version string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Verbose {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		router:     gin.New(),
		config:     cfg,
		enumerator: enumerator,
		limiters:   newRateLimiterMap(),
		logger:     logger,
		version:    version,
	}

	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(requestID())
	s.router.Use(s.requestLogger())
	s.router.Use(s.rateLimiter())

	if len(s.config.Server.CORSOrigins) > 0 {
		s.router.Use(cors.New(cors.Config{
			AllowOrigins:  s.config.Server.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-API-Key", requestIDHeader},
			ExposeHeaders: []string{requestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}
}

func (s *Server) setupRoutes() {
	// Health check (no auth required)
	s.router.GET("/health", s.healthCheck)

	s.router.POST("/subdomain/enumerate", s.tokenAuth(), s.enumerate)

	api := s.router.Group("/api/v1")
	api.Use(s.tokenAuth())
	{
		api.POST("/subdomain/enumerate", s.enumerate)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.config.Server.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		// Enumerations can take the whole deadline
		WriteTimeout: s.config.Deadline() + 10*time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("api server listening", zap.String("addr", s.config.Server.Addr))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down api server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
