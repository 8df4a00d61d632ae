package web

import (
	"github.com/go-chi/chi/v5"

	"faceauth/internal/biometric"
	"faceauth/internal/quiz"
	"faceauth/internal/web/handlers"
	"faceauth/internal/web/middleware"
)

func (s *Server) setupRoutes(service *biometric.Service, q *quiz.Quiz, auth *middleware.Authenticator) {
	faceHandler := handlers.NewFaceHandler(service)
	quizHandler := handlers.NewQuizHandler(q, service)

	// Health check (no auth required)
	s.router.Get("/api/v1/health", handlers.HealthCheck)

	// API routes
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(auth))

			// Face enrollment and verification
			r.Post("/face/register", faceHandler.Register)
			r.Post("/face/verify", faceHandler.Verify)

			// Quiz attempts
			r.Post("/quiz/start", quizHandler.Start)
			r.Post("/quiz/submit", quizHandler.Submit)
		})
	})
}
