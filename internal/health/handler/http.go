// Package handler serves liveness/readiness checks.
package handler

import (
	"context"
	"net/http"
	"time"

	"horizon/backend/internal/server/httpjson"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler serves GET /healthz. A nil pinger reports liveness only.
type Handler struct {
	pinger Pinger
}

// New returns a health handler.
func New(pinger Pinger) *Handler {
	return &Handler{pinger: pinger}
}

type healthResponse struct {
	Status string `json:"status"`
	DB     string `json:"db,omitempty"`
}

// Check handles GET /healthz.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.pinger.Ping(ctx); err != nil {
			resp.Status = "degraded"
			resp.DB = "unreachable"
			httpjson.Write(w, http.StatusServiceUnavailable, resp)
			return
		}
		resp.DB = "ok"
	}
	httpjson.Write(w, http.StatusOK, resp)
}
