// Package server assembles the HTTP routing table and middleware chain.
package server

import (
	"net/http"

	eventhandler "horizon/backend/internal/event/handler"
	healthhandler "horizon/backend/internal/health/handler"
	identityhandler "horizon/backend/internal/identity/handler"
	registrationhandler "horizon/backend/internal/registration/handler"
	"horizon/backend/internal/server/middleware"
	userdomain "horizon/backend/internal/user/domain"
)

// Handlers groups the route handlers the router mounts.
type Handlers struct {
	Auth          *identityhandler.AuthHandler
	Events        *eventhandler.EventHandler
	Registrations *registrationhandler.RegistrationHandler
	Health        *healthhandler.Handler
	Metrics       http.Handler
}

// NewRouter wires the routing table. Middleware order is trace, then
// logging/metrics, then the per-route guard, so every response is traced and
// counted even when authentication rejects it. The metrics endpoint sits
// outside the chain so scrapes do not feed the audit pipeline.
func NewRouter(h Handlers, guard *middleware.Guard, logging func(http.Handler) http.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /auth/register", h.Auth.Register)
	mux.HandleFunc("POST /auth/login", h.Auth.Login)
	mux.HandleFunc("POST /auth/refresh", h.Auth.Refresh)
	mux.HandleFunc("POST /auth/logout", h.Auth.Logout)

	core := guard.Require(userdomain.RoleCore)
	authed := guard.Require()

	mux.Handle("POST /events", core(http.HandlerFunc(h.Events.Create)))
	mux.Handle("PUT /events/{id}", core(http.HandlerFunc(h.Events.Update)))
	mux.HandleFunc("GET /events", h.Events.List)
	mux.HandleFunc("GET /events/{id}", h.Events.Get)

	mux.Handle("POST /registrations", authed(http.HandlerFunc(h.Registrations.Register)))
	mux.Handle("GET /registrations/status", authed(http.HandlerFunc(h.Registrations.Status)))
	mux.Handle("DELETE /registrations", authed(http.HandlerFunc(h.Registrations.Cancel)))

	mux.HandleFunc("GET /healthz", h.Health.Check)

	outer := http.NewServeMux()
	if h.Metrics != nil {
		outer.Handle("GET /metrics", h.Metrics)
	}
	outer.Handle("/", middleware.Trace(logging(mux)))
	return outer
}
