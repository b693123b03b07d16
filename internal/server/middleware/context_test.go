package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{"forwarded single", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"forwarded chain takes first", "10.0.0.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"real ip", "10.0.0.1:1234", map[string]string{"X-Real-IP": "198.51.100.7"}, "198.51.100.7"},
		{"remote addr", "192.0.2.4:5678", nil, "192.0.2.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, ClientIP(req))
		})
	}
}

func TestTraceInstallsStateAndHeader(t *testing.T) {
	var seen *RequestState
	h := Trace(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetState(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotNil(t, seen)
	assert.Len(t, seen.TraceID, 8)
	assert.Equal(t, seen.TraceID, rec.Header().Get(TraceHeader))
}

func TestRequestInfo(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/auth/refresh", nil)
	req.RemoteAddr = "192.0.2.4:5678"
	req.Header.Set(DeviceIDHeader, "dev-1")
	req = req.WithContext(WithState(req.Context(), &RequestState{TraceID: "abcd1234", ActorID: "u-1"}))

	ri := RequestInfo(req)
	assert.Equal(t, "POST", ri.Method)
	assert.Equal(t, "/auth/refresh", ri.Path)
	assert.Equal(t, "u-1", ri.ActorID)
	assert.Equal(t, "dev-1", ri.DeviceID)
	assert.Equal(t, "192.0.2.4", ri.ClientIP)
	assert.Equal(t, "abcd1234", ri.TraceID)
}
