package middleware

import (
	"log"
	"net/http"
	"strings"
	"time"
)

// Logger writes one line per request: method, path, status and duration.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the writer so the handler's status code can be read back
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		// Method and path are caller-supplied; strip CR/LF so a request
		// cannot forge extra log lines.
		sanitize := strings.NewReplacer("\n", "", "\r", "").Replace
		//nolint:gosec // G706: sanitized above
		log.Printf(
			"%s %s %d %s",
			sanitize(r.Method),
			sanitize(r.URL.Path),
			wrapped.statusCode,
			time.Since(start),
		)
	})
}

// responseWriter records the status code passed to WriteHeader.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
