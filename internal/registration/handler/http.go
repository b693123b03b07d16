// Package handler exposes event registration over HTTP.
package handler

import (
	"context"
	"net/http"
	"time"

	eventrepo "horizon/backend/internal/event/repository"
	"horizon/backend/internal/registration/domain"
	"horizon/backend/internal/registration/repository"
	"horizon/backend/internal/server/httpjson"
	"horizon/backend/internal/server/middleware"
	userdomain "horizon/backend/internal/user/domain"
)

// UserLookup resolves the caller's user record; registrations are keyed by
// university uid, which the token does not carry.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*userdomain.User, error)
}

// RegistrationHandler serves the /registrations endpoints.
type RegistrationHandler struct {
	registrations repository.Repository
	events        eventrepo.Repository
	users         UserLookup
}

// NewRegistrationHandler returns a RegistrationHandler.
func NewRegistrationHandler(registrations repository.Repository, events eventrepo.Repository, users UserLookup) *RegistrationHandler {
	return &RegistrationHandler{registrations: registrations, events: events, users: users}
}

type registrationRequest struct {
	EventID string `json:"event_id"`
}

type statusResponse struct {
	Registered   bool       `json:"registered"`
	RegisteredAt *time.Time `json:"registered_at,omitempty"`
}

// Register handles POST /registrations. Duplicate registration for the same
// event is a conflict; unknown or unpublished events read as missing.
func (h *RegistrationHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.EventID == "" {
		httpjson.Error(w, http.StatusBadRequest, "event_id is required")
		return
	}
	uid, ok := h.callerUniversityUID(w, r)
	if !ok {
		return
	}
	event, err := h.events.GetPublished(r.Context(), req.EventID)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if event == nil {
		httpjson.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	existing, err := h.registrations.Find(r.Context(), req.EventID, uid)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if existing != nil {
		httpjson.Error(w, http.StatusConflict, "Already registered for this event")
		return
	}
	reg := &domain.Registration{
		EventID:       req.EventID,
		UniversityUID: uid,
		RegisteredAt:  time.Now().UTC(),
	}
	if err := h.registrations.Insert(r.Context(), reg); err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	// Count drift from a failed increment is tolerable; the registration
	// record is the source of truth.
	_ = h.events.AdjustRegisteredCount(r.Context(), req.EventID, 1)
	httpjson.Write(w, http.StatusCreated, reg)
}

// Status handles GET /registrations/status?event_id=...
func (h *RegistrationHandler) Status(w http.ResponseWriter, r *http.Request) {
	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		httpjson.Error(w, http.StatusBadRequest, "event_id is required")
		return
	}
	uid, ok := h.callerUniversityUID(w, r)
	if !ok {
		return
	}
	reg, err := h.registrations.Find(r.Context(), eventID, uid)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	resp := statusResponse{Registered: reg != nil}
	if reg != nil {
		resp.RegisteredAt = &reg.RegisteredAt
	}
	httpjson.Write(w, http.StatusOK, resp)
}

// Cancel handles DELETE /registrations.
func (h *RegistrationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	var req registrationRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	if req.EventID == "" {
		httpjson.Error(w, http.StatusBadRequest, "event_id is required")
		return
	}
	uid, ok := h.callerUniversityUID(w, r)
	if !ok {
		return
	}
	deleted, err := h.registrations.Delete(r.Context(), req.EventID, uid)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if !deleted {
		httpjson.Error(w, http.StatusNotFound, "Registration not found")
		return
	}
	_ = h.events.AdjustRegisteredCount(r.Context(), req.EventID, -1)
	httpjson.Write(w, http.StatusOK, map[string]string{"detail": "Registration cancelled"})
}

// callerUniversityUID resolves the authenticated caller's university uid. On
// failure it writes the error response and returns false.
func (h *RegistrationHandler) callerUniversityUID(w http.ResponseWriter, r *http.Request) (string, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return "", false
	}
	user, err := h.users.GetByID(r.Context(), claims.Subject)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return "", false
	}
	if user == nil {
		httpjson.Error(w, http.StatusUnauthorized, "Invalid or expired token")
		return "", false
	}
	return user.UniversityUID, true
}
