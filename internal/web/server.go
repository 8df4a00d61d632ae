// Package web wires the HTTP API: routing, middleware and lifecycle.
package web

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"

	"faceauth/internal/biometric"
	"faceauth/internal/config"
	"faceauth/internal/quiz"
	"faceauth/internal/web/middleware"
)

// Server represents the web server
type Server struct {
	config      *config.Config
	router      *chi.Mux
	httpServer  *http.Server
	rateLimiter *middleware.RateLimiter
}

// NewServer creates a new web server
func NewServer(cfg *config.Config, service *biometric.Service, q *quiz.Quiz, auth *middleware.Authenticator) *Server {
	r := chi.NewRouter()

	rateLimiter := middleware.NewRateLimiter(
		cfg.RateLimit.MaxRequests,
		time.Duration(cfg.RateLimit.WindowSeconds)*time.Second,
	)

	s := &Server{
		config:      cfg,
		router:      r,
		rateLimiter: rateLimiter,
	}

	// Set up middleware stack
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))
	r.Use(middleware.CORS())
	r.Use(middleware.RateLimit(rateLimiter))
	r.Use(middleware.MaxUpload(cfg.Upload.MaxSize))

	s.setupRoutes(service, q, auth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Web.Host, cfg.Web.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// Start starts the HTTP server
func (s *Server) Start() error {
	log.Printf("Starting web server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	log.Println("Shutting down web server...")

	// Stop the rate limiter cleanup goroutine
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}

// Router returns the chi router for testing
func (s *Server) Router() *chi.Mux {
	return s.router
}
