// Package server exposes a gocalc.Calculator as an HTTP tool endpoint.
//
//	POST /tool    execute a tool call
//	GET  /schema  tool schema for agent registration
//	GET  /health  liveness check
//	GET  /metrics Prometheus metrics
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/metrics"
)

const requestIDHeader = "X-Request-ID"

type Server struct {
	calc    *gocalc.Calculator
	cfg     config.ServerConfig
	log     *slog.Logger
	metrics *metrics.Metrics
	limiter *rate.Limiter
	router  *gin.Engine
}

// New wires the routes. A nil logger means slog.Default().
func New(calc *gocalc.Calculator, cfg config.ServerConfig, log *slog.Logger, m *metrics.Metrics) *Server {
	if log == nil {
		log = slog.Default()
	}
	if m == nil {
		m = metrics.New()
	}
	s := &Server{calc: calc, cfg: cfg, log: log, metrics: m}
	if cfg.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	r := gin.New()
	r.Use(s.recovery(), requestID())
	r.POST("/tool", s.rateLimit(), s.limitBody(), s.handleTool)
	r.GET("/schema", handleSchema)
	r.GET("/health", handleHealth)
	r.GET("/metrics", gin.WrapH(m.Handler()))
	s.router = r
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on cfg.Addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       s.cfg.ReadTimeout,
		WriteTimeout:      s.cfg.WriteTimeout,
		IdleTimeout:       s.cfg.IdleTimeout,
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("gocalc tool server listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down", "timeout", s.cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// =============================================================================
// Middleware
// =============================================================================

// requestID echoes X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Header(requestIDHeader, id)
		c.Set(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		s.log.Error("panic in handler", "path", c.Request.URL.Path, "request_id", c.GetString(requestIDHeader), "panic", rec)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gocalc.ToolResponse{Error: "internal server error"})
	})
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.limiter != nil && !s.limiter.Allow() {
			s.metrics.Reject(metrics.OutcomeRateLimited)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gocalc.ToolResponse{Error: "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxBodyBytes)
		c.Next()
	}
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleTool(c *gin.Context) {
	id := c.GetString(requestIDHeader)

	var req gocalc.ToolRequest
	if status, err := decode(c.Request, &req); err != nil {
		s.metrics.Reject(metrics.OutcomeBadRequest)
		s.log.Info("bad request", "request_id", id, "error", err)
		c.JSON(status, gocalc.ToolResponse{Error: err.Error()})
		return
	}

	start := time.Now()
	res, err := s.calc.Dispatch(c.Request.Context(), req)
	elapsed := time.Since(start)

	var pe *gocalc.ParamError
	switch {
	case errors.As(err, &pe):
		s.finish(id, req.Tool, metrics.OutcomeBadRequest, elapsed, err)
		c.JSON(http.StatusBadRequest, gocalc.ToolResponse{Error: err.Error(), Message: gocalc.FormatFailure(err)})
	case err != nil:
		s.finish(id, req.Tool, metrics.OutcomeError, elapsed, err)
		c.JSON(http.StatusOK, gocalc.ToolResponse{Error: err.Error(), Message: gocalc.FormatFailure(err)})
	default:
		s.finish(id, req.Tool, metrics.OutcomeOK, elapsed, nil)
		c.JSON(http.StatusOK, gocalc.Respond(res))
	}
}

func (s *Server) finish(id, tool, outcome string, elapsed time.Duration, err error) {
	s.metrics.ObserveCall(tool, outcome, elapsed)
	attrs := []any{"request_id", id, "tool", tool, "outcome", outcome, "duration", elapsed}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	s.log.Info("tool call", attrs...)
}

// decode reads exactly one JSON object with no unknown fields and validates
// it with the gin binding validator.
func decode(r *http.Request, req *gocalc.ToolRequest) (int, error) {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return http.StatusRequestEntityTooLarge, err
		}
		return http.StatusBadRequest, err
	}
	if dec.More() {
		return http.StatusBadRequest, errors.New("invalid JSON: trailing data")
	}
	if err := binding.Validator.ValidateStruct(req); err != nil {
		return http.StatusBadRequest, err
	}
	return http.StatusOK, nil
}

func handleSchema(c *gin.Context) {
	c.Data(http.StatusOK, "application/json", []byte(gocalc.ToolSpec()))
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}
