// Package middleware holds the HTTP middleware chain: trace IDs, request
// logging/metrics, and the authorization guard.
package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"

	"horizon/backend/internal/audit"
	"horizon/backend/internal/security"
)

// DeviceIDHeader carries the caller's opaque device identifier on login and
// refresh calls.
const DeviceIDHeader = "X-Device-ID"

type contextKey struct{ name string }

var (
	claimsKey = contextKey{"claims"}
	stateKey  = contextKey{"state"}
)

// RequestState is the mutable per-request record shared along the middleware
// chain. The trace middleware installs it; the guard fills in the actor once
// the token is verified, so the outer logging middleware sees it.
type RequestState struct {
	TraceID string
	ActorID string
}

// WithState returns a context carrying the request state.
func WithState(ctx context.Context, st *RequestState) context.Context {
	return context.WithValue(ctx, stateKey, st)
}

// GetState returns the request state from context, or nil.
func GetState(ctx context.Context) *RequestState {
	st, _ := ctx.Value(stateKey).(*RequestState)
	return st
}

// WithClaims returns a context carrying the verified access token claims.
func WithClaims(ctx context.Context, claims *security.AccessClaims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// GetClaims returns the verified claims from context and true if set.
func GetClaims(ctx context.Context) (*security.AccessClaims, bool) {
	v, ok := ctx.Value(claimsKey).(*security.AccessClaims)
	return v, ok
}

// ClientIP returns the client IP from X-Forwarded-For, X-Real-IP, or the
// remote address, or "unknown".
func ClientIP(r *http.Request) string {
	if s := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); s != "" {
		if i := strings.Index(s, ","); i > 0 {
			s = strings.TrimSpace(s[:i])
		}
		return s
	}
	if s := strings.TrimSpace(r.Header.Get("X-Real-IP")); s != "" {
		return s
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}

// RequestInfo captures the request context the audit pipeline enriches events
// with: method, path, actor, device header, client address, trace id.
func RequestInfo(r *http.Request) audit.RequestInfo {
	actorID, traceID := "", ""
	if st := GetState(r.Context()); st != nil {
		actorID = st.ActorID
		traceID = st.TraceID
	}
	if claims, ok := GetClaims(r.Context()); ok && claims.Subject != "" {
		actorID = claims.Subject
	}
	return audit.RequestInfo{
		Method:   r.Method,
		Path:     r.URL.Path,
		ActorID:  actorID,
		DeviceID: r.Header.Get(DeviceIDHeader),
		ClientIP: ClientIP(r),
		TraceID:  traceID,
	}
}
