// Package domain defines the event model.
package domain

import (
	"errors"
	"time"
)

// EventType distinguishes free and paid events.
type EventType string

const (
	TypeFree EventType = "free"
	TypePaid EventType = "paid"
)

// Valid reports whether t is a known event type.
func (t EventType) Valid() bool {
	return t == TypeFree || t == TypePaid
}

// EventStatus is the publication state. New events start as drafts and are
// invisible to attendees until published.
type EventStatus string

const (
	StatusDraft     EventStatus = "draft"
	StatusPublished EventStatus = "published"
	StatusCancelled EventStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s EventStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished || s == StatusCancelled
}

// Event is an event document.
type Event struct {
	ID               string      `bson:"_id" json:"id"`
	Title            string      `bson:"title" json:"title"`
	EventType        EventType   `bson:"event_type" json:"event_type"`
	Level            string      `bson:"level,omitempty" json:"level,omitempty"`
	Price            *float64    `bson:"price,omitempty" json:"price,omitempty"`
	Currency         string      `bson:"currency,omitempty" json:"currency,omitempty"`
	StartTime        time.Time   `bson:"start_time" json:"start_time"`
	EndTime          time.Time   `bson:"end_time" json:"end_time"`
	Location         string      `bson:"location,omitempty" json:"location,omitempty"`
	BannerURL        string      `bson:"banner_url,omitempty" json:"banner_url,omitempty"`
	Capacity         *int        `bson:"capacity,omitempty" json:"capacity,omitempty"`
	ShortDescription string      `bson:"short_description,omitempty" json:"short_description,omitempty"`
	Description      string      `bson:"description,omitempty" json:"description,omitempty"`
	Agenda           string      `bson:"agenda,omitempty" json:"agenda,omitempty"`
	Rules            string      `bson:"rules,omitempty" json:"rules,omitempty"`
	ContactEmail     string      `bson:"contact_email,omitempty" json:"contact_email,omitempty"`
	Status           EventStatus `bson:"status" json:"status"`
	CreatedBy        string      `bson:"created_by" json:"created_by"`
	RegisteredCount  int         `bson:"registered_count" json:"registered_count"`
	CreatedAt        time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time   `bson:"updated_at" json:"updated_at"`
}

// Validate checks the invariants a stored event must hold.
func (e *Event) Validate() error {
	if e.Title == "" {
		return errors.New("title is required")
	}
	if !e.EventType.Valid() {
		return errors.New("event_type must be free or paid")
	}
	if e.EventType == TypePaid {
		if e.Price == nil || *e.Price <= 0 {
			return errors.New("paid events require a positive price")
		}
		if e.Currency == "" {
			return errors.New("paid events require a currency")
		}
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return errors.New("start_time and end_time are required")
	}
	if !e.EndTime.After(e.StartTime) {
		return errors.New("end_time must be after start_time")
	}
	if !e.Status.Valid() {
		return errors.New("invalid status")
	}
	return nil
}
