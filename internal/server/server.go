package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/auth"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/config"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/accounts"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/catalog"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/investments"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/recommendation"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/transactions"
	"github.com/jayanthkotte/Personalized-Investment-Recommendation-App/internal/modules/users"
)

// Handlers collects each module's HTTP surface for route registration
type Handlers struct {
	Auth           *accounts.Handlers
	Users          *users.Handlers
	Transactions   *transactions.Handlers
	Catalog        *catalog.Handlers
	Investments    *investments.Handlers
	Recommendation *recommendation.Handlers
}

// Server represents the HTTP server
type Server struct {
	router   *chi.Mux
	server   *http.Server
	log      zerolog.Logger
	cfg      *config.Config
	handlers Handlers
}

// New creates a new HTTP server with all module routes mounted
func New(cfg *config.Config, handlers Handlers, log zerolog.Logger) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		log:      log.With().Str("component", "server").Logger(),
		cfg:      cfg,
		handlers: handlers,
	}

	s.setupMiddleware()
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.loggingMiddleware)
	s.router.Use(middleware.Timeout(60 * time.Second))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if !s.cfg.DevMode {
		s.router.Use(middleware.Compress(5))
	}
}

// setupRoutes configures all routes
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)

	s.router.Route("/api", func(r chi.Router) {
		// Public routes
		s.handlers.Auth.RegisterRoutes(r)
		s.handlers.Catalog.RegisterRoutes(r)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(auth.Authenticator(s.cfg.JWTSecret))
			s.handlers.Users.RegisterRoutes(r)
			s.handlers.Transactions.RegisterRoutes(r)
			s.handlers.Investments.RegisterRoutes(r)
			s.handlers.Recommendation.RegisterRoutes(r)
		})
	})
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.log.Info().Int("port", s.cfg.Port).Msg("Starting HTTP server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("Shutting down HTTP server")
	return s.server.Shutdown(ctx)
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration_ms", time.Since(start)).
			Str("request_id", middleware.GetReqID(r.Context())).
			Msg("HTTP request")
	})
}
