// Package handler exposes event management over HTTP. Writes are restricted
// to the core role by the router; reads return published events only.
package handler

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"horizon/backend/internal/event/domain"
	"horizon/backend/internal/event/repository"
	"horizon/backend/internal/server/httpjson"
	"horizon/backend/internal/server/middleware"
)

// EventHandler serves the /events endpoints.
type EventHandler struct {
	events repository.Repository
}

// NewEventHandler returns an EventHandler backed by the given repository.
func NewEventHandler(events repository.Repository) *EventHandler {
	return &EventHandler{events: events}
}

type createEventRequest struct {
	Title            string    `json:"title"`
	EventType        string    `json:"event_type"`
	Level            string    `json:"level"`
	Price            *float64  `json:"price"`
	Currency         string    `json:"currency"`
	StartTime        time.Time `json:"start_time"`
	EndTime          time.Time `json:"end_time"`
	Location         string    `json:"location"`
	BannerURL        string    `json:"banner_url"`
	Capacity         *int      `json:"capacity"`
	ShortDescription string    `json:"short_description"`
	Description      string    `json:"description"`
	Agenda           string    `json:"agenda"`
	Rules            string    `json:"rules"`
	ContactEmail     string    `json:"contact_email"`
}

// updateEventRequest uses pointers so absent fields can be told apart from
// zero values.
type updateEventRequest struct {
	Title            *string    `json:"title"`
	EventType        *string    `json:"event_type"`
	Level            *string    `json:"level"`
	Price            *float64   `json:"price"`
	Currency         *string    `json:"currency"`
	StartTime        *time.Time `json:"start_time"`
	EndTime          *time.Time `json:"end_time"`
	Location         *string    `json:"location"`
	BannerURL        *string    `json:"banner_url"`
	Capacity         *int       `json:"capacity"`
	ShortDescription *string    `json:"short_description"`
	Description      *string    `json:"description"`
	Agenda           *string    `json:"agenda"`
	Rules            *string    `json:"rules"`
	ContactEmail     *string    `json:"contact_email"`
	Status           *string    `json:"status"`
}

// Create handles POST /events. New events always start as drafts.
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createEventRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	createdBy := ""
	if claims, ok := middleware.GetClaims(r.Context()); ok {
		createdBy = claims.Subject
	}
	now := time.Now().UTC()
	e := &domain.Event{
		ID:               uuid.New().String(),
		Title:            req.Title,
		EventType:        domain.EventType(req.EventType),
		Level:            req.Level,
		Price:            req.Price,
		Currency:         req.Currency,
		StartTime:        req.StartTime,
		EndTime:          req.EndTime,
		Location:         req.Location,
		BannerURL:        req.BannerURL,
		Capacity:         req.Capacity,
		ShortDescription: req.ShortDescription,
		Description:      req.Description,
		Agenda:           req.Agenda,
		Rules:            req.Rules,
		ContactEmail:     req.ContactEmail,
		Status:           domain.StatusDraft,
		CreatedBy:        createdBy,
		RegisteredCount:  0,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := e.Validate(); err != nil {
		httpjson.Error(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := h.events.Create(r.Context(), e); err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpjson.Write(w, http.StatusCreated, e)
}

// Update handles PUT /events/{id}. Only the provided fields change.
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req updateEventRequest
	if !httpjson.Decode(w, r, &req) {
		return
	}
	set := buildUpdateSet(&req)
	if len(set) == 0 {
		httpjson.Error(w, http.StatusBadRequest, "No fields to update")
		return
	}
	if status, ok := set["status"].(domain.EventStatus); ok && !status.Valid() {
		httpjson.Error(w, http.StatusBadRequest, "invalid status")
		return
	}
	e, err := h.events.UpdateByID(r.Context(), id, set)
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if e == nil {
		httpjson.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	httpjson.Write(w, http.StatusOK, e)
}

// List handles GET /events. Published events only, ordered by start time.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.ListPublished(r.Context())
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httpjson.Write(w, http.StatusOK, events)
}

// Get handles GET /events/{id}. Drafts and cancelled events read as missing.
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	e, err := h.events.GetPublished(r.Context(), r.PathValue("id"))
	if err != nil {
		httpjson.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	if e == nil {
		httpjson.Error(w, http.StatusNotFound, "Event not found")
		return
	}
	httpjson.Write(w, http.StatusOK, e)
}

func buildUpdateSet(req *updateEventRequest) map[string]any {
	set := map[string]any{}
	if req.Title != nil {
		set["title"] = *req.Title
	}
	if req.EventType != nil {
		set["event_type"] = domain.EventType(*req.EventType)
	}
	if req.Level != nil {
		set["level"] = *req.Level
	}
	if req.Price != nil {
		set["price"] = *req.Price
	}
	if req.Currency != nil {
		set["currency"] = *req.Currency
	}
	if req.StartTime != nil {
		set["start_time"] = *req.StartTime
	}
	if req.EndTime != nil {
		set["end_time"] = *req.EndTime
	}
	if req.Location != nil {
		set["location"] = *req.Location
	}
	if req.BannerURL != nil {
		set["banner_url"] = *req.BannerURL
	}
	if req.Capacity != nil {
		set["capacity"] = *req.Capacity
	}
	if req.ShortDescription != nil {
		set["short_description"] = *req.ShortDescription
	}
	if req.Description != nil {
		set["description"] = *req.Description
	}
	if req.Agenda != nil {
		set["agenda"] = *req.Agenda
	}
	if req.Rules != nil {
		set["rules"] = *req.Rules
	}
	if req.ContactEmail != nil {
		set["contact_email"] = *req.ContactEmail
	}
	if req.Status != nil {
		set["status"] = domain.EventStatus(*req.Status)
	}
	return set
}
