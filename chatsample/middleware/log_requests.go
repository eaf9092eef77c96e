// Package middleware carries the http middleware of the chat sample.
package middleware

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// LogRequests writes one structured log line per handled request.
func LogRequests(logger zerolog.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrappedWriter := wrapResponseWriter(w)
		start := time.Now()

		h.ServeHTTP(wrappedWriter, r)

		logger.Info().
			Int("status", wrappedWriter.Status()).
			Str("method", r.Method).
			Str("uri", r.URL.String()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}
