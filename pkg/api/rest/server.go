package rest

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nblast/nblast/pkg/api/rest/middleware"
	"github.com/nblast/nblast/pkg/observability"
	"github.com/nblast/nblast/pkg/tenant"
)

// Config holds the REST server configuration.
type Config struct {
	Host        string
	Port        int
	CORSEnabled bool
	CORSOrigins []string
	Auth        middleware.AuthConfig
	RateLimit   middleware.RateLimitConfig
}

// Server is the NBLAST REST API server. It talks directly to an in-process
// tenant.Manager — there is no separate backend process to dial.
type Server struct {
	config     Config
	handler    *Handler
	httpServer *http.Server
	mux        *http.ServeMux
	logger     *observability.Logger
}

// NewServer creates a new REST API server over the given tenant manager.
func NewServer(config Config, tenants *tenant.Manager, metrics *observability.Metrics, logger *observability.Logger) *Server {
	if logger == nil {
		logger = observability.GetGlobalLogger()
	}

	server := &Server{
		config:  config,
		handler: NewHandler(tenants, metrics, logger),
		mux:     http.NewServeMux(),
		logger:  logger,
	}

	server.setupRoutes()

	server.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", config.Host, config.Port),
		Handler:      server.withMiddleware(server.mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/v1/health", s.handler.HealthCheck)

	s.mux.HandleFunc("/v1/tenants", s.handler.CreateTenant)
	s.mux.HandleFunc("/v1/tenants/", s.routeTenantScoped)

	s.mux.HandleFunc("/docs", ServeSwaggerUI)
	s.mux.HandleFunc("/docs/openapi.yaml", ServeDocs)
}

// routeTenantScoped dispatches everything under /v1/tenants/{namespace}/...
func (s *Server) routeTenantScoped(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/v1/tenants/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 0 || parts[0] == "" {
		writeError(w, "missing tenant namespace", http.StatusBadRequest)
		return
	}
	namespace := parts[0]
	rest := ""
	if len(parts) == 2 {
		rest = parts[1]
	}

	switch {
	case rest == "neurons" && r.Method == http.MethodPost:
		s.handler.AddNeuron(w, r, namespace)
	case strings.HasPrefix(rest, "neurons/") && strings.HasSuffix(rest, "/stats") && r.Method == http.MethodGet:
		s.handler.NeuronStats(w, r, namespace, trimSuffixSegment(rest, "/stats"))
	case strings.HasPrefix(rest, "neurons/") && strings.HasSuffix(rest, "/similar") && r.Method == http.MethodGet:
		s.handler.SuggestSimilar(w, r, namespace, trimSuffixSegment(rest, "/similar"))
	case rest == "query" && r.Method == http.MethodPost:
		s.handler.Query(w, r, namespace)
	case rest == "batch" && r.Method == http.MethodPost:
		s.handler.Batch(w, r, namespace)
	case rest == "all-vs-all" && r.Method == http.MethodPost:
		s.handler.AllVsAll(w, r, namespace)
	case rest == "labels/search" && r.Method == http.MethodGet:
		s.handler.SearchLabels(w, r, namespace)
	case rest == "" && r.Method == http.MethodGet:
		s.handler.GetTenant(w, r, namespace)
	default:
		http.NotFound(w, r)
	}
}

func trimSuffixSegment(path, suffix string) string {
	path = strings.TrimPrefix(path, "neurons/")
	return strings.TrimSuffix(path, suffix)
}

// withMiddleware wraps the handler with all middleware. A request passes
// through auth first, then rate limiting, then CORS, then logging; logging
// is the innermost wrapper and auth the outermost.
func (s *Server) withMiddleware(handler http.Handler) http.Handler {
	handler = loggingMiddleware(s.logger, handler)

	if s.config.CORSEnabled {
		handler = corsMiddleware(s.config.CORSOrigins)(handler)
	}

	rateLimiter := middleware.NewRateLimiter(s.config.RateLimit)
	handler = middleware.RateLimitMiddleware(rateLimiter)(handler)

	handler = middleware.AuthMiddleware(s.config.Auth)(handler)

	return handler
}

// Start starts the REST API server.
func (s *Server) Start() error {
	s.logger.Info(fmt.Sprintf("starting NBLAST API server on %s:%d", s.config.Host, s.config.Port))
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start HTTP server: %w", err)
	}
	return nil
}

// Stop gracefully stops the server.
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("shutting down NBLAST API server")
	return s.httpServer.Shutdown(ctx)
}

func loggingMiddleware(logger *observability.Logger, next http.Handler) http.Handler {
	accessLogger := observability.NewAccessLogger(logger)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		accessLogger.LogAccess(r.Method, r.URL.Path, fmt.Sprintf("%d", wrapped.statusCode), time.Since(start), nil)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			allowed := false
			if len(allowedOrigins) == 0 || (len(allowedOrigins) == 1 && allowedOrigins[0] == "*") {
				allowed = true
				origin = "*"
			} else {
				for _, allowedOrigin := range allowedOrigins {
					if allowedOrigin == origin {
						allowed = true
						break
					}
				}
			}

			if allowed {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				w.Header().Set("Access-Control-Max-Age", "3600")
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
