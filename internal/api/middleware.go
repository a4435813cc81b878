package api

import (
	"crypto/subtle"
	"net/http"
)

// APIKeyMiddleware requires the X-API-Key header to equal key.
// A missing header is 401, a wrong one 403.
func APIKeyMiddleware(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			provided := r.Header.Get("X-API-Key")
			if provided == "" {
				writeDetail(w, http.StatusUnauthorized, "API key is missing")
				return
			}
			if subtle.ConstantTimeCompare([]byte(provided), []byte(key)) != 1 {
				writeDetail(w, http.StatusForbidden, "Invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LimitUploadSize rejects requests whose declared Content-Length exceeds limit
// before any of the body is read.
func LimitUploadSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				writeDetail(w, http.StatusRequestEntityTooLarge, sizeLimitMessage(limit))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
