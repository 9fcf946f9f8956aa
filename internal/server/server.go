// Package server exposes single-trace peak detection over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-peak/internal/batch"
	"github.com/cwbudde/algo-peak/internal/logging"
	"github.com/cwbudde/algo-peak/measure/peak"
)

const defaultAddr = ":8080"

// Config wires a Server.
type Config struct {
	Addr    string
	Params  peak.Params
	Metrics *batch.Metrics
	Logger  *zap.Logger
}

// Server serves the detection API.
type Server struct {
	addr    string
	params  peak.Params
	metrics *batch.Metrics
	logger  *zap.Logger
	router  *gin.Engine
}

// New builds a server. Params are the defaults for requests that carry no
// parameter overrides; the zero value selects peak.DefaultParams.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.Params == (peak.Params{}) {
		cfg.Params = peak.DefaultParams()
	}
	if cfg.Metrics == nil {
		cfg.Metrics = batch.NewMetrics()
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	s := &Server{
		addr:    cfg.Addr,
		params:  cfg.Params,
		metrics: cfg.Metrics,
		logger:  logging.OrNop(cfg.Logger),
		router:  router,
	}
	router.Use(gin.Recovery(), s.logRequests)
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	s.router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.metrics.Registry(), promhttp.HandlerOpts{})))
	api := s.router.Group("/v1")
	api.POST("/detect", s.handleDetect)
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until ctx is canceled or the listener fails.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	s.logger.Info("http server listening", zap.String("addr", s.addr))

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.logger.Debug("http request",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Int("status", c.Writer.Status()),
		zap.Duration("elapsed", time.Since(start)),
	)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
