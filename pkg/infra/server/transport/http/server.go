// Package http provides the gin based HTTP transport.
package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/middleware"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/middleware/observability"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/middleware/resilience"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/middleware/security"
	"github.com/ISHANT57/Gita-Chatbot/pkg/infra/server/transport"
	mwopts "github.com/ISHANT57/Gita-Chatbot/pkg/options/middleware"
	options "github.com/ISHANT57/Gita-Chatbot/pkg/options/server/http"
	apierrors "github.com/ISHANT57/Gita-Chatbot/pkg/utils/errors"
)

// Re-export types from options package for convenience
type (
	// Options contains HTTP server configuration.
	Options = options.Options
	// Option is a function that configures Options.
	Option = options.Option
)

// Re-export option functions
var (
	NewOptions       = options.NewOptions
	WithAddr         = options.WithAddr
	WithReadTimeout  = options.WithReadTimeout
	WithWriteTimeout = options.WithWriteTimeout
	WithIdleTimeout  = options.WithIdleTimeout
)

// Server is the HTTP server implementation.
type Server struct {
	opts   *options.Options
	mwOpts *mwopts.Options
	engine *gin.Engine
	server *http.Server
}

// ginValidator wraps transport.Validator for gin binding.
type ginValidator struct {
	validator transport.Validator
}

func (v *ginValidator) ValidateStruct(obj interface{}) error {
	return v.validator.Validate(obj)
}

func (v *ginValidator) Engine() interface{} {
	return nil
}

// NewServer creates a new HTTP server with the given options.
func NewServer(serverOpts *options.Options, middlewareOpts *mwopts.Options) *Server {
	if serverOpts == nil {
		serverOpts = options.NewOptions()
	}
	if middlewareOpts == nil {
		middlewareOpts = mwopts.NewOptions()
	}

	gin.SetMode(gin.ReleaseMode)

	// 不使用 gin 默认中间件，完全由配置驱动
	engine := gin.New()

	s := &Server{
		opts:   serverOpts,
		mwOpts: middlewareOpts,
		engine: engine,
	}

	// 在创建 Server 时就应用中间件
	// 这样所有后续创建的路由组都会继承这些中间件
	s.applyMiddleware(middlewareOpts)

	return s
}

// Name returns the server name.
func (s *Server) Name() string {
	return "http[gin]"
}

// Engine returns the underlying gin.Engine.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// SetValidator sets the global validator for the server.
func (s *Server) SetValidator(v transport.Validator) {
	binding.Validator = &ginValidator{validator: v}
}

// applyMiddleware applies configured middleware to the engine,
// following the configured middleware order.
func (s *Server) applyMiddleware(opts *mwopts.Options) {
	_ = opts.Complete()

	for _, name := range opts.GetMiddlewareOrder() {
		if !opts.IsEnabled(name) {
			continue
		}
		if mw := buildMiddleware(opts, name); mw != nil {
			s.engine.Use(mw)
		}
	}
}

// buildMiddleware 根据名称和动态配置构建 gin 中间件。
// 未知名称或配置类型不匹配时返回 nil。
func buildMiddleware(opts *mwopts.Options, name string) gin.HandlerFunc {
	switch name {
	case mwopts.MiddlewareRecovery:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.RecoveryOptions](opts, name); ok {
			return resilience.RecoveryWithOptions(*cfg, nil)
		}
	case mwopts.MiddlewareRequestID:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.RequestIDOptions](opts, name); ok {
			return middleware.RequestIDWithOptions(*cfg)
		}
	case mwopts.MiddlewareLogger:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.LoggerOptions](opts, name); ok {
			return observability.LoggerWithOptions(*cfg, nil)
		}
	case mwopts.MiddlewareMetrics:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.MetricsOptions](opts, name); ok {
			return observability.MetricsWithOptions(*cfg)
		}
	case mwopts.MiddlewareCORS:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.CORSOptions](opts, name); ok {
			return security.CORSWithOptions(*cfg)
		}
	case mwopts.MiddlewareSecurityHeaders:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.SecurityHeadersOptions](opts, name); ok {
			return security.SecurityHeadersWithOptions(*cfg)
		}
	case mwopts.MiddlewareBodyLimit:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.BodyLimitOptions](opts, name); ok {
			return resilience.BodyLimitWithOptions(*cfg)
		}
	case mwopts.MiddlewareCircuitBreaker:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.CircuitBreakerOptions](opts, name); ok {
			return resilience.CircuitBreakerWithOptions(*cfg)
		}
	case mwopts.MiddlewareTimeout:
		if cfg, ok := mwopts.GetConfigTyped[*mwopts.TimeoutOptions](opts, name); ok {
			return resilience.TimeoutWithOptions(*cfg)
		}
	}
	return nil
}

// registerRoutes 注册由配置启用的内置端点（health、metrics、pprof、version）。
func (s *Server) registerRoutes() {
	if cfg, ok := mwopts.GetConfigTyped[*mwopts.HealthOptions](s.mwOpts, mwopts.MiddlewareHealth); ok {
		middleware.RegisterHealthRoutesWithOptions(s.engine, *cfg, cfg.Checker)
	}
	if cfg, ok := mwopts.GetConfigTyped[*mwopts.MetricsOptions](s.mwOpts, mwopts.MiddlewareMetrics); ok {
		observability.RegisterMetricsRoutesWithOptions(s.engine, *cfg)
	}
	if cfg, ok := mwopts.GetConfigTyped[*mwopts.PprofOptions](s.mwOpts, mwopts.MiddlewarePprof); ok {
		middleware.RegisterPprofRoutesWithOptions(s.engine, *cfg)
	}
	if cfg, ok := mwopts.GetConfigTyped[*mwopts.VersionOptions](s.mwOpts, mwopts.MiddlewareVersion); ok {
		middleware.RegisterVersionRoutes(s.engine, *cfg)
	}
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	// Set default 404 handler with JSON response
	s.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    apierrors.ErrRouteNotFound.Code,
			"message": apierrors.ErrRouteNotFound.MessageEN,
		})
	})

	s.registerRoutes()

	s.server = &http.Server{
		Addr:         s.opts.Addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  s.opts.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Stop stops the HTTP server gracefully.
func (s *Server) Stop(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Ensure Server implements the required interfaces.
var _ transport.Transport = (*Server)(nil)
