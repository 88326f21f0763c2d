// Package api provides the HTTP API server and handlers for the Lounge community feed.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/mommylounge/lounge-server/internal/config"
	"github.com/mommylounge/lounge-server/internal/http/response"
	"github.com/mommylounge/lounge-server/internal/ratelimit"
	"github.com/mommylounge/lounge-server/internal/sse"
	"github.com/mommylounge/lounge-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Server holds dependencies for HTTP handlers.
type Server struct {
	store        *store.Store
	services     *Services
	router       *chi.Mux
	api          huma.API
	sseManager   *sse.Manager
	sseHandler   *sse.Handler
	writeLimiter *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	store *store.Store,
	services *Services,
	sseManager *sse.Manager,
	sseHandler *sse.Handler,
	cfg *config.Config,
	logger *slog.Logger,
) *Server {
	router := chi.NewRouter()

	s := &Server{
		store:        store,
		services:     services,
		router:       router,
		sseManager:   sseManager,
		sseHandler:   sseHandler,
		writeLimiter: ratelimit.PerInterval(cfg.RateLimit.WritesPerMinute, time.Minute, cfg.RateLimit.Burst),
		logger:       logger,
	}

	s.setupMiddleware(cfg.Server.CORSOrigins)

	humaConfig := huma.DefaultConfig("Lounge API", Version)
	humaConfig.Info.Description = "Community feed: posts, comments and reply notifications."
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	humaConfig.Transformers = append(humaConfig.Transformers, EnvelopeTransformer)

	s.api = humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases background resources held by the server.
func (s *Server) Close() {
	s.writeLimiter.Stop()
}

func (s *Server) setupMiddleware(origins []string) {
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(authMiddleware(s.services.Identity))

	s.router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found", s.logger)
	})
	s.router.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.MethodNotAllowed(w, s.logger)
	})
}

func (s *Server) setupRoutes() {
	s.registerHealthRoutes()
	s.registerPostRoutes()
	s.registerCommentRoutes()
	s.registerNotificationRoutes()
	s.registerUserRoutes()

	// Event stream (chi direct, not huma)
	s.router.Get("/api/v1/events", s.sseHandler.ServeHTTP)
}
