package middleware

import "net/http"

// MaxUpload returns middleware that caps request body size.
//
// Requests declaring a Content-Length over the limit are rejected
// with 413 before any body bytes are read. A missing or unparsable
// Content-Length passes the pre-check; http.MaxBytesReader still
// caps what handlers can actually read, so a lying or chunked
// request fails once it exceeds the limit mid-read.
func MaxUpload(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error": "request body too large"}`))
				return
			}

			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
