// Package httpapi serves the admin HTTP endpoint: /_health and /metrics.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	slogecho "github.com/samber/slog-echo"
)

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Server struct {
	echo   *echo.Echo
	httpd  *http.Server
	db     Pinger
	logger *slog.Logger
}

type healthResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// New builds the admin server. reg receives the HTTP middleware metrics and
// gatherer is exposed on /metrics.
func New(addr string, db Pinger, reg prometheus.Registerer, gatherer prometheus.Gatherer, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "blockkeeper_http",
		Registerer: reg,
	}))

	slogEchoCfg := slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		Filters: []slogecho.Filter{
			func(ctx echo.Context) bool {
				return ctx.Request().URL.Path != "/_health"
			},
		},
	}
	e.Use(slogecho.NewWithConfig(logger, slogEchoCfg))

	s := &Server{
		echo:   e,
		db:     db,
		logger: logger,
		httpd: &http.Server{
			Handler:           e,
			Addr:              addr,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}

	e.GET("/_health", s.handleHealth)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))

	return s
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "unavailable", Error: "database unreachable"})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("starting admin http server", "address", s.httpd.Addr)
		if err := s.httpd.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("stopping admin http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpd.Shutdown(shutdownCtx)
}
