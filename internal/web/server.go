// Package web provides the HTTP API and dashboard for candidate intake.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/JonMunkholm/talent/internal/config"
	"github.com/JonMunkholm/talent/internal/core"
	"github.com/JonMunkholm/talent/internal/logging"
	"github.com/JonMunkholm/talent/internal/web/middleware"
)

const apiVersion = "1.0.0"

var errRateLimited = errors.New("rate limit exceeded")

// Server is the HTTP server for the candidate API.
type Server struct {
	service *core.Service
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server

	limiters []*rateLimiter
}

// NewServer creates a new Server instance.
func NewServer(service *core.Service, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// setupMiddleware configures middleware for all routes.
func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders(s.cfg.Security.EnableCSP))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Security.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-API-Key", "X-Request-Id", "HX-Request"},
		ExposedHeaders:   []string{"Content-Disposition", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	s.router.Use(clientMetadata)

	if s.cfg.Rate.Enabled {
		s.router.Use(s.newRateLimiter(s.cfg.Rate.Max).middleware)
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	uploads := s.uploadRoutes()

	s.router.Get("/", s.handleDashboard)
	s.router.Route("/candidates", func(r chi.Router) {
		r.Get("/table", s.handleCandidateTable)
		r.Get("/template", s.handleTemplate)
		r.Get("/export", s.handleExport)

		// Dashboard forms post here without an API key. Requiring the
		// HX-Request header forces a CORS preflight on cross-site posts.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireHTMX)
			uploads(r)
		})
	})

	s.router.Route("/api", func(r chi.Router) {
		r.Get("/", s.handleInfo)
		r.Get("/health", s.handleHealth)

		r.Group(func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(&s.cfg.Security))

			r.Route("/candidates", func(r chi.Router) {
				uploads(r)

				r.Get("/format", s.handleExpectedFormat)
				r.Get("/template", s.handleTemplate)
				r.Get("/export", s.handleExport)
				r.Get("/statistics", s.handleStatistics)
				r.Get("/stats/summary", s.handleStatistics)
				r.Get("/upload-status", s.handleUploadQueueStatus)

				r.Post("/", s.handleCreate)
				r.Get("/", s.handleList)
				r.Get("/{id}", s.handleGet)
				r.Patch("/{id}", s.handleUpdate)
				r.Delete("/{id}", s.handleDelete)
				r.Get("/{id}/history", s.handleHistory)
			})
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		if wantsJSON(r) {
			writeJSONStatus(w, http.StatusNotFound, ErrorResponse{
				Error:   http.StatusText(http.StatusNotFound),
				Message: "No route matches " + r.Method + " " + r.URL.Path,
				Code:    "HTTP404",
			})
			return
		}
		http.NotFound(w, r)
	})
}

// uploadRoutes returns a function mounting the upload and extract endpoints.
// Every mount shares one upload rate limiter, so the dashboard and the API
// draw from the same per-client budget.
func (s *Server) uploadRoutes() func(chi.Router) {
	var limit func(http.Handler) http.Handler
	if s.cfg.Rate.Enabled {
		limit = s.newRateLimiter(s.cfg.Rate.UploadLimit).middleware
	}
	return func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if limit != nil {
				r.Use(limit)
			}
			r.Post("/upload", s.handleUpload)
			r.Post("/extract", s.handleExtract)
		})
	}
}

// Start listens on the configured address until Shutdown is called.
func (s *Server) Start() error {
	addr := s.cfg.Server.Addr()
	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("starting server", "addr", addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server and the rate limiter sweepers.
func (s *Server) Shutdown(ctx context.Context) error {
	for _, rl := range s.limiters {
		rl.stop()
	}
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router returns the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// securityHeaders adds security headers to all responses.
func securityHeaders(enableCSP bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			if enableCSP {
				w.Header().Set("Content-Security-Policy",
					"default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; img-src 'self' data:")
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (s *Server) newRateLimiter(rate int) *rateLimiter {
	rl := newRateLimiter(rate, s.cfg.Rate.Window, s.rejectRateLimited)
	s.limiters = append(s.limiters, rl)
	return rl
}

func (s *Server) rejectRateLimited(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Retry-After", strconv.Itoa(int(s.cfg.Rate.Window.Seconds())))
	s.respondError(w, r, errRateLimited)
}

// rateLimiter implements a fixed-window limiter per client IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
	reject   http.HandlerFunc
	now      func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
// reject writes the response for a limited request.
func newRateLimiter(rate int, window time.Duration, reject http.HandlerFunc) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
		reject:   reject,
		now:      time.Now,
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries once per window.
func (rl *rateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, v := range rl.visitors {
				if rl.now().Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	v, exists := rl.visitors[ip]
	if !exists || now.Sub(v.lastReset) > rl.window {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: now}
		return rl.rate > 0
	}

	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

// middleware rate limits by the client IP resolved by TrustedRealIP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !rl.allow(clientIP(r)) {
			rl.reject(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP strips the port from RemoteAddr.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// writeJSON encodes v as JSON with status 200.
func writeJSON(w http.ResponseWriter, v any) {
	writeJSONStatus(w, http.StatusOK, v)
}

// writeJSONStatus encodes v as JSON and writes it with status.
// Encoding errors are only logged since headers are already sent.
func writeJSONStatus(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode error", "error", err)
	}
}

// logFor returns the request-scoped logger.
func logFor(r *http.Request) *slog.Logger {
	return logging.FromContext(r.Context())
}
