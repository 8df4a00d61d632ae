package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"faceauth/internal/quiz"
	"faceauth/internal/web/middleware"
)

func testQuiz() *quiz.Quiz {
	return &quiz.Quiz{
		Title: "Test Quiz",
		Questions: []quiz.Question{
			{ID: 1, Text: "q1", Choices: []string{"a", "b"}, Answer: "a"},
			{ID: 2, Text: "q2", Choices: []string{"a", "b"}, Answer: "b"},
		},
	}
}

func authedRequest(t *testing.T, method, target, userID, body string) *http.Request {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req.WithContext(middleware.SetIdentityInContext(req.Context(), userID))
}

func TestQuizHandler_StartUnenrolled(t *testing.T) {
	handler := NewQuizHandler(testQuiz(), newTestService(t))

	rec := httptest.NewRecorder()
	handler.Start(rec, authedRequest(t, http.MethodPost, "/api/v1/quiz/start", "alice", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	payload := decodeJSON(t, rec)
	if id, _ := payload["attempt_id"].(string); id == "" {
		t.Error("expected a non-empty attempt id")
	}
	if reauth, _ := payload["require_face_reauth"].(bool); reauth {
		t.Error("unenrolled user must not be asked to re-verify")
	}
}

func TestQuizHandler_StartEnrolledRequiresReauth(t *testing.T) {
	service := newTestService(t)
	if err := service.Enroll(context.Background(), "alice", halfPNG(t, true)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	handler := NewQuizHandler(testQuiz(), service)

	rec := httptest.NewRecorder()
	handler.Start(rec, authedRequest(t, http.MethodPost, "/api/v1/quiz/start", "alice", ""))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	payload := decodeJSON(t, rec)
	if reauth, _ := payload["require_face_reauth"].(bool); !reauth {
		t.Error("enrolled user must be asked to re-verify")
	}
}

func TestQuizHandler_Submit(t *testing.T) {
	handler := NewQuizHandler(testQuiz(), newTestService(t))

	body := `{"attempt_id": "att-1", "answers": {"1": "a", "2": "a"}}`
	rec := httptest.NewRecorder()
	handler.Submit(rec, authedRequest(t, http.MethodPost, "/api/v1/quiz/submit", "alice", body))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	payload := decodeJSON(t, rec)
	if score, _ := payload["score"].(float64); score != 1 {
		t.Errorf("expected score 1, got %v", payload["score"])
	}
	if total, _ := payload["total"].(float64); total != 2 {
		t.Errorf("expected total 2, got %v", payload["total"])
	}
}

func TestQuizHandler_SubmitRejectsBadInput(t *testing.T) {
	handler := NewQuizHandler(testQuiz(), newTestService(t))

	cases := map[string]string{
		"invalid json":        `{`,
		"non-numeric qid key": `{"answers": {"first": "a"}}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.Submit(rec, authedRequest(t, http.MethodPost, "/api/v1/quiz/submit", "alice", body))
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", rec.Code)
			}
		})
	}
}
