// Package gateway runs the edge in front of the storefront backend. It mounts
// the access-control middleware on a reverse proxy, exposes decision metrics,
// and serves a websocket stream that evaluates client-context navigations for
// the single-page app.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	routegate "github.com/shopfront/routegate"
	"github.com/shopfront/routegate/internal/config"
	"github.com/shopfront/routegate/internal/rate"
	"github.com/shopfront/routegate/metrics/export/prometheus"
	"github.com/shopfront/routegate/middleware"
)

// Server is the running gateway. The engine pointer is swapped atomically on
// configuration reload; in-flight requests keep the engine they started with.
type Server struct {
	log    *slog.Logger
	engine atomic.Pointer[routegate.Engine]

	listen  string
	backend http.Handler
	httpSrv *http.Server

	auditFile *os.File
	redis     *redis.Client
	limiter   *rate.Limiter
}

// New builds a gateway from a validated configuration file.
func New(cfg *config.File, log *slog.Logger) (*Server, error) {
	if log == nil {
		log = slog.Default()
	}

	s := &Server{
		log:    log,
		listen: cfg.Listen,
	}

	if cfg.Redis.Addr != "" {
		s.redis = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		s.limiter = rate.New(s.redis, rate.Config{
			MaxAttempts: cfg.Stream.MaxConnPerIP,
			Window:      cfg.Stream.Window,
		})
	}

	engine, err := s.buildEngine(cfg)
	if err != nil {
		s.closeResources()
		return nil, err
	}
	s.engine.Store(engine)

	backend, err := backendHandler(cfg.Backend)
	if err != nil {
		engine.Close()
		s.closeResources()
		return nil, err
	}
	s.backend = backend

	s.httpSrv = &http.Server{
		Addr:              cfg.Listen,
		Handler:           s.router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s, nil
}

// Engine returns the currently active decision engine.
func (s *Server) Engine() *routegate.Engine {
	return s.engine.Load()
}

// Reload builds a fresh engine from cfg and swaps it in. The previous engine
// is closed after the swap.
func (s *Server) Reload(cfg *config.File) error {
	engine, err := s.buildEngine(cfg)
	if err != nil {
		return err
	}
	old := s.engine.Swap(engine)
	if old != nil {
		old.Close()
	}
	s.log.Info("engine reloaded")
	return nil
}

// Run serves HTTP until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- s.httpSrv.ListenAndServe()
	}()

	s.log.Info("gateway listening", "addr", s.listen)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.httpSrv.Shutdown(shutdownCtx)
}

// Close releases the engine and its backing resources.
func (s *Server) Close() {
	if engine := s.engine.Swap(nil); engine != nil {
		engine.Close()
	}
	s.closeResources()
}

func (s *Server) closeResources() {
	if s.auditFile != nil {
		s.auditFile.Close()
		s.auditFile = nil
	}
	if s.redis != nil {
		s.redis.Close()
		s.redis = nil
	}
}

func (s *Server) buildEngine(cfg *config.File) (*routegate.Engine, error) {
	engineCfg, err := cfg.EngineConfig()
	if err != nil {
		return nil, err
	}

	builder := routegate.New().WithConfig(engineCfg)

	if s.redis != nil {
		builder = builder.WithRedis(s.redis)
	}

	if cfg.Audit.Enabled {
		if s.auditFile == nil {
			f, err := os.OpenFile(cfg.Audit.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
			if err != nil {
				return nil, fmt.Errorf("open audit log: %w", err)
			}
			s.auditFile = f
		}
		builder = builder.WithAuditSink(routegate.NewJSONWriterSink(s.auditFile))
	}

	engine, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, nil
}

func (s *Server) router() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealthz)
	r.Method(http.MethodGet, "/metrics", prometheus.NewPrometheusExporterFromSource(s).Handler())
	r.Get("/session/stream", s.handleStream)

	r.Handle("/*", s.gate(s.backend))
	return r
}

// MetricsSnapshot reads from whichever engine is live, so the /metrics
// endpoint survives reloads.
func (s *Server) MetricsSnapshot() routegate.MetricsSnapshot {
	return s.engine.Load().MetricsSnapshot()
}

// AuditDropped reads from whichever engine is live.
func (s *Server) AuditDropped() uint64 {
	return s.engine.Load().AuditDropped()
}

// gate applies edge access control with the engine that is live when the
// request arrives.
func (s *Server) gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		middleware.Edge(s.engine.Load())(next).ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
		)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	if s.engine.Load() == nil {
		http.Error(w, "engine not ready", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

// backendHandler proxies to the storefront origin. An empty backend URL gets
// a placeholder handler so the gateway still answers during development.
func backendHandler(backend string) (http.Handler, error) {
	if backend == "" {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			fmt.Fprintf(w, "routegate: no backend configured, allowed %s\n", r.URL.Path)
		}), nil
	}

	target, err := url.Parse(backend)
	if err != nil {
		return nil, fmt.Errorf("backend URL: %w", err)
	}
	return httputil.NewSingleHostReverseProxy(target), nil
}
