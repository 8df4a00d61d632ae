package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"faceauth/internal/biometric"
	"faceauth/internal/quiz"
	"faceauth/internal/web/middleware"
)

// QuizHandler serves quiz attempts gated by face re-authentication.
type QuizHandler struct {
	quiz    *quiz.Quiz
	service *biometric.Service
}

func NewQuizHandler(q *quiz.Quiz, service *biometric.Service) *QuizHandler {
	return &QuizHandler{quiz: q, service: service}
}

// Start opens a quiz attempt. Enrolled users are told to re-verify
// their face before submitting; unenrolled users proceed without it.
func (h *QuizHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.IdentityFromContext(r.Context())

	enrolled, err := h.service.Enrolled(r.Context(), userID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to check enrollment")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"attempt_id":          uuid.NewString(),
		"quiz":                h.quiz,
		"require_face_reauth": enrolled,
	})
}

type submitRequest struct {
	AttemptID string            `json:"attempt_id"`
	Answers   map[string]string `json:"answers"`
}

// Submit scores the submitted answers. Answer keys are question ids;
// non-numeric keys are rejected.
func (h *QuizHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	answers := make(map[int]string, len(req.Answers))
	for key, answer := range req.Answers {
		id, err := strconv.Atoi(key)
		if err != nil {
			respondError(w, http.StatusBadRequest, "answer keys must be question ids")
			return
		}
		answers[id] = answer
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"attempt_id": req.AttemptID,
		"score":      h.quiz.Score(answers),
		"total":      h.quiz.Len(),
	})
}
