// Package audit implements the asynchronous api/security log pipeline: event
// construction, two bounded queues with drop-newest backpressure, and batch
// delivery to an external webhook sink.
package audit

import (
	"fmt"
	"time"
)

// Sink colors for event kinds that are not derived from an HTTP status.
const (
	securityColor  = 15158332
	newDeviceColor = 16098851
)

// Field is one name/value entry in a sink embed.
type Field struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// Event is an ephemeral value delivered to the external sink. Events are
// created per request, enqueued, consumed exactly once by a delivery worker,
// and dropped when the queue is full.
type Event struct {
	Title     string    `json:"title"`
	Color     int       `json:"color"`
	Fields    []Field   `json:"fields"`
	Timestamp time.Time `json:"timestamp"`
}

// StatusStyle returns the sink color, emoji, and label for an HTTP status code.
// Presentation only; never used for routing decisions.
func StatusStyle(status int) (color int, emoji, label string) {
	switch {
	case status >= 200 && status < 300:
		return 5763719, "✅", "Success"
	case status >= 300 && status < 400:
		return 3447003, "🔁", "Redirect"
	case status == 401 || status == 403:
		return 16776960, "🔒", "Unauthorized"
	case status >= 400 && status < 500:
		return 16753920, "⚠️", "Client Error"
	default:
		return 15548997, "💥", "Server Error"
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// RequestInfo is the request context captured at event-construction time.
type RequestInfo struct {
	Method   string
	Path     string
	ActorID  string
	DeviceID string
	ClientIP string
	TraceID  string
}

func (ri RequestInfo) commonFields() []Field {
	return []Field{
		{Name: "Device", Value: orDefault(ri.DeviceID, "unknown"), Inline: true},
		{Name: "IP Address", Value: orDefault(ri.ClientIP, "unknown"), Inline: true},
		{Name: "Trace ID", Value: orDefault(ri.TraceID, "unknown"), Inline: true},
	}
}

// NewAPIEvent builds an operational event for one handled request.
func NewAPIEvent(ri RequestInfo, status int, latency time.Duration) Event {
	color, emoji, label := StatusStyle(status)
	fields := []Field{
		{Name: "Method", Value: ri.Method, Inline: true},
		{Name: "Status", Value: fmt.Sprintf("%d (%s)", status, label), Inline: true},
		{Name: "User", Value: orDefault(ri.ActorID, "anonymous")},
		{Name: "Endpoint", Value: ri.Path},
	}
	fields = append(fields, ri.commonFields()...)
	if latency > 0 {
		fields = append(fields, Field{
			Name:   "Latency",
			Value:  fmt.Sprintf("%.2f ms", float64(latency.Microseconds())/1000),
			Inline: true,
		})
	}
	return Event{
		Title:     emoji + " API Request",
		Color:     color,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

// NewSecurityEvent builds a security event for an auth-relevant transition
// (login, refresh, rotation, revocation, device mismatch).
func NewSecurityEvent(ri RequestInfo, action string) Event {
	fields := []Field{
		{Name: "Method", Value: ri.Method, Inline: true},
		{Name: "User", Value: orDefault(ri.ActorID, "anonymous"), Inline: true},
		{Name: "Endpoint", Value: ri.Path},
	}
	fields = append(fields, ri.commonFields()...)
	return Event{
		Title:     "🚨 Security Event - " + action,
		Color:     securityColor,
		Fields:    fields,
		Timestamp: time.Now().UTC(),
	}
}

// NewDeviceEvent builds the notification emitted when a login arrives from a
// device with no prior non-revoked session.
func NewDeviceEvent(userID, deviceID, clientIP, traceID string) Event {
	return Event{
		Title: "🆕 New Device Login Detected",
		Color: newDeviceColor,
		Fields: []Field{
			{Name: "User", Value: userID},
			{Name: "Device ID", Value: deviceID, Inline: true},
			{Name: "IP Address", Value: orDefault(clientIP, "unknown"), Inline: true},
			{Name: "Trace ID", Value: orDefault(traceID, "unknown"), Inline: true},
		},
		Timestamp: time.Now().UTC(),
	}
}
