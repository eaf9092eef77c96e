package middleware

import (
	"bufio"
	"errors"
	"net"
	"net/http"
)

func wrapResponseWriter(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{ResponseWriter: w, status: http.StatusOK}
}

// responseWriterWrapper captures the written HTTP status code for logging.
// It passes Flush and Hijack through to the wrapped writer, the websocket
// and server sent event transports need them.
type responseWriterWrapper struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

// Status returns the written status code, http.StatusOK if the handler never
// wrote one explicitly.
func (rw *responseWriterWrapper) Status() int {
	return rw.status
}

func (rw *responseWriterWrapper) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
	rw.wroteHeader = true
}

func (rw *responseWriterWrapper) Flush() {
	if flusher, ok := rw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (rw *responseWriterWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hijacker.Hijack()
}
