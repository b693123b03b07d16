package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"horizon/backend/internal/audit"
)

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// Logging returns middleware that measures each request, counts it in
// Prometheus, and emits an operational event to the pipeline. Emission is
// non-blocking; a full queue drops the event rather than delaying the caller.
func Logging(recorder *audit.Recorder, requests *prometheus.CounterVec) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(sr, r)

			latency := time.Since(start)
			if requests != nil {
				requests.WithLabelValues(r.Method, strconv.Itoa(sr.status)).Inc()
			}
			recorder.API(RequestInfo(r), sr.status, latency)
		})
	}
}
