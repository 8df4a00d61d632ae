package handlers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"faceauth/internal/biometric"
	"faceauth/internal/embedding"
	"faceauth/internal/registry"
	"faceauth/internal/web/middleware"
)

// multipartMemoryLimit is how much of a multipart body is held in
// memory before spilling to disk. The overall body size is already
// capped by the upload middleware.
const multipartMemoryLimit = 8 << 20

// FaceHandler handles face enrollment and verification endpoints.
type FaceHandler struct {
	service *biometric.Service
}

func NewFaceHandler(service *biometric.Service) *FaceHandler {
	return &FaceHandler{service: service}
}

// readImageFile extracts the uploaded image from the "file" multipart field.
func readImageFile(r *http.Request) ([]byte, error) {
	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return nil, err
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return io.ReadAll(file)
}

// Register enrolls the authenticated user's reference face image.
func (h *FaceHandler) Register(w http.ResponseWriter, r *http.Request) {
	userID := middleware.IdentityFromContext(r.Context())

	image, err := readImageFile(r)
	if err != nil {
		respondUploadError(w, err)
		return
	}

	if err := h.service.Enroll(r.Context(), userID, image); err != nil {
		respondFaceError(w, userID, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Verify compares an uploaded probe image against the authenticated
// user's enrolled reference and returns the match decision.
func (h *FaceHandler) Verify(w http.ResponseWriter, r *http.Request) {
	userID := middleware.IdentityFromContext(r.Context())

	image, err := readImageFile(r)
	if err != nil {
		respondUploadError(w, err)
		return
	}

	decision, err := h.service.Verify(r.Context(), userID, image)
	if err != nil {
		respondFaceError(w, userID, err)
		return
	}

	respondJSON(w, http.StatusOK, decision)
}

// respondUploadError maps multipart parsing failures to status codes.
func respondUploadError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		respondError(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	respondError(w, http.StatusBadRequest, "missing or invalid 'file' upload field")
}

// respondFaceError maps biometric pipeline failures to status codes.
func respondFaceError(w http.ResponseWriter, userID string, err error) {
	switch {
	case errors.Is(err, embedding.ErrInvalidImage):
		respondError(w, http.StatusBadRequest, "uploaded file is not a decodable image")
	case errors.Is(err, embedding.ErrNoFaceDetected):
		respondError(w, http.StatusBadRequest, "no face detected in the uploaded image")
	case errors.Is(err, registry.ErrNotEnrolled):
		respondError(w, http.StatusNotFound, "no enrolled face for this user")
	case errors.Is(err, embedding.ErrDimensionMismatch):
		respondError(w, http.StatusInternalServerError, "stored embedding is incompatible, re-enrollment required")
	default:
		log.Printf("face pipeline error for user %s: %v", sanitizeForLog(userID), err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
