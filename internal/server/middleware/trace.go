package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// TraceHeader is echoed back to the client for debugging.
const TraceHeader = "X-Trace-ID"

// Trace assigns every request a short trace id, installs the shared request
// state in the context, and exposes the id on the response.
func Trace(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := &RequestState{TraceID: newTraceID()}
		r = r.WithContext(WithState(r.Context(), st))
		w.Header().Set(TraceHeader, st.TraceID)
		next.ServeHTTP(w, r)
	})
}

func newTraceID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}
