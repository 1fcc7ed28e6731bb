package log

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

type loggingHandler struct {
	inner  http.Handler
	logger Logger
}

// NewLoggingHandler wraps a handler to log one line per request with a
// generated request id, the response status and the elapsed time.
func NewLoggingHandler(inner http.Handler, logger Logger) http.Handler {
	return &loggingHandler{inner: inner, logger: logger}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (h *loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	requestID := uuid.NewString()
	recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	started := time.Now()

	h.inner.ServeHTTP(recorder, r)

	h.logger.Info("request served",
		"requestId", requestID,
		"method", r.Method,
		"path", r.URL.Path,
		"status", recorder.status,
		"elapsed", time.Since(started))
}
