package middleware

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"net/http"
	"strings"
)

type contextKey string

const identityContextKey contextKey = "identity"

// Authenticator issues and verifies signed bearer tokens. A token is
// the base64url user id joined with an HMAC-SHA256 signature, so the
// server stays stateless.
type Authenticator struct {
	secret []byte
}

func NewAuthenticator(secret string) *Authenticator {
	// Development fallback when no secret is configured.
	if secret == "" {
		secret = "faceauth-dev-secret-change-in-production"
	}
	return &Authenticator{secret: []byte(secret)}
}

// Token returns a signed bearer token for the user.
func (a *Authenticator) Token(userID string) string {
	payload := base64.URLEncoding.EncodeToString([]byte(userID))
	return payload + "." + a.sign(payload)
}

// Verify checks a token's signature and returns the user id it was
// issued for. Returns false for malformed or tampered tokens.
func (a *Authenticator) Verify(token string) (string, bool) {
	parts := strings.SplitN(token, ".", 2)
	if len(parts) != 2 {
		return "", false
	}

	if !hmac.Equal([]byte(parts[1]), []byte(a.sign(parts[0]))) {
		return "", false
	}

	userID, err := base64.URLEncoding.DecodeString(parts[0])
	if err != nil || len(userID) == 0 {
		return "", false
	}
	return string(userID), true
}

func (a *Authenticator) sign(data string) string {
	h := hmac.New(sha256.New, a.secret)
	h.Write([]byte(data))
	return base64.URLEncoding.EncodeToString(h.Sum(nil))
}

// RequireAuth is middleware that requires a valid bearer token and
// puts the authenticated user id into the request context.
func RequireAuth(a *Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			userID, ok := a.Verify(strings.TrimPrefix(authHeader, "Bearer "))
			if !ok {
				http.Error(w, `{"error": "unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), identityContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the authenticated user id, or "" when
// the request was not authenticated.
func IdentityFromContext(ctx context.Context) string {
	identity, _ := ctx.Value(identityContextKey).(string)
	return identity
}

// SetIdentityInContext adds a user id to the context.
// This is primarily for testing - use RequireAuth middleware in production.
func SetIdentityInContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, identityContextKey, userID)
}
