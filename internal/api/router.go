// Package api serves the public news API and the admin API.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
)

// Server represents the API server.
type Server struct {
	router   *chi.Mux
	handlers *Handlers
	addr     string
	server   *http.Server
}

// NewServer creates a new API server.
func NewServer(d Deps, addr string) *Server {
	handlers := NewHandlers(d)

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	// CORS
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", handlers.HealthCheck)
		r.Get("/categories", handlers.GetCategories)
		r.Get("/news", handlers.GetNews)
		r.Post("/interpret", handlers.Interpret)

		r.Route("/admin", func(r chi.Router) {
			// Session
			r.Post("/login", handlers.AdminLogin)
			r.Post("/logout", handlers.AdminLogout)
			r.Get("/verify", handlers.AdminVerify)

			r.Group(func(r chi.Router) {
				r.Use(d.Auth.Middleware)

				// Review queue
				r.Get("/queue", handlers.GetQueue)
				r.Post("/queue", handlers.RefillQueue)
				r.Patch("/queue/{id}", handlers.ReviewQueueItem)

				// Articles
				r.Get("/articles", handlers.ListArticles)
				r.Post("/articles", handlers.CreateArticle)
				r.Patch("/articles/{id}", handlers.UpdateArticle)
				r.Delete("/articles/{id}", handlers.DeleteArticle)
				r.Post("/fetch-url", handlers.FetchURL)
				r.Post("/score", handlers.ScoreArticle)

				// Stats and cache
				r.Get("/stats", handlers.GetStats)
				r.Delete("/cache", handlers.ClearCache)
				r.Delete("/cache/{id}", handlers.DeleteCacheEntry)

				// Job management
				r.Get("/jobs", handlers.GetJobs)
				r.Post("/jobs/{name}/run", handlers.RunJob)
			})
		})
	})

	return &Server{
		router:   r,
		handlers: handlers,
		addr:     addr,
	}
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the API server.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 90 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Info().Str("addr", s.addr).Msg("Starting API server")
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
