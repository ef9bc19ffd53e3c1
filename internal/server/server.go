// Package server exposes the engine over HTTP: a JSON action endpoint, a
// websocket action stream, liveness probes and Prometheus metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/tatianab/orb-cult/internal/engine"
)

// KeepAlive is the body served at the root path.
const KeepAlive = "The orb is watching."

// Options configure a Server.
type Options struct {
	// ActionRate is the sustained actions per second a websocket
	// connection may send. Zero disables limiting.
	ActionRate  float64
	ActionBurst int
	Logger      *slog.Logger
}

// Server routes requests to an engine.
type Server struct {
	engine *engine.Engine
	router *gin.Engine
	log    *slog.Logger
	limit  rate.Limit
	burst  int
}

// New builds the router.
func New(eng *engine.Engine, opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.DiscardHandler)
	}
	s := &Server{
		engine: eng,
		router: gin.New(),
		log:    opts.Logger,
		limit:  rate.Inf,
		burst:  max(1, opts.ActionBurst),
	}
	if opts.ActionRate > 0 {
		s.limit = rate.Limit(opts.ActionRate)
	}
	s.router.Use(gin.Recovery(), s.requestLog())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, KeepAlive)
	})
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := s.router.Group("/v1")
	{
		v1.POST("/actions", s.handleAction)
		v1.GET("/profiles/:id", s.handleProfile)
		v1.GET("/story", s.handleStory)
		v1.GET("/ws", s.handleWebSocket)
	}
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"elapsed", time.Since(start),
		)
	}
}
