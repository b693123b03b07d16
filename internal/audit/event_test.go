package audit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStatusStyle(t *testing.T) {
	tests := []struct {
		status int
		color  int
		label  string
	}{
		{200, 5763719, "Success"},
		{201, 5763719, "Success"},
		{302, 3447003, "Redirect"},
		{401, 16776960, "Unauthorized"},
		{403, 16776960, "Unauthorized"},
		{404, 16753920, "Client Error"},
		{409, 16753920, "Client Error"},
		{500, 15548997, "Server Error"},
		{503, 15548997, "Server Error"},
	}
	for _, tt := range tests {
		color, _, label := StatusStyle(tt.status)
		assert.Equal(t, tt.color, color, "status %d color", tt.status)
		assert.Equal(t, tt.label, label, "status %d label", tt.status)
	}
}

func TestNewAPIEvent(t *testing.T) {
	ri := RequestInfo{
		Method:   "POST",
		Path:     "/auth/login",
		DeviceID: "dev-1",
		ClientIP: "10.0.0.1",
		TraceID:  "abcd1234",
	}
	e := NewAPIEvent(ri, 401, 3*time.Millisecond)

	assert.Equal(t, 16776960, e.Color)
	assert.False(t, e.Timestamp.IsZero())

	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "POST", fields["Method"])
	assert.Equal(t, "401 (Unauthorized)", fields["Status"])
	assert.Equal(t, "anonymous", fields["User"], "missing actor reads as anonymous")
	assert.Equal(t, "/auth/login", fields["Endpoint"])
	assert.Equal(t, "dev-1", fields["Device"])
	assert.Equal(t, "10.0.0.1", fields["IP Address"])
	assert.Equal(t, "abcd1234", fields["Trace ID"])
	assert.Contains(t, fields, "Latency")
}

func TestNewSecurityEvent(t *testing.T) {
	e := NewSecurityEvent(RequestInfo{Method: "POST", Path: "/auth/refresh", ActorID: "u-1"}, "refresh_device_mismatch")
	assert.Equal(t, "🚨 Security Event - refresh_device_mismatch", e.Title)
	assert.Equal(t, securityColor, e.Color)
}

func TestNewDeviceEvent(t *testing.T) {
	e := NewDeviceEvent("u-1", "dev-9", "", "")
	assert.Equal(t, newDeviceColor, e.Color)
	fields := map[string]string{}
	for _, f := range e.Fields {
		fields[f.Name] = f.Value
	}
	assert.Equal(t, "u-1", fields["User"])
	assert.Equal(t, "dev-9", fields["Device ID"])
	assert.Equal(t, "unknown", fields["IP Address"])
}
