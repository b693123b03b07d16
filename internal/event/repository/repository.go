// Package repository persists events.
package repository

import (
	"context"

	"horizon/backend/internal/event/domain"
)

// Repository is the event storage contract.
type Repository interface {
	Create(ctx context.Context, e *domain.Event) error
	// UpdateByID applies the given field set and returns the updated event, or
	// nil when no event has that id. Callers must not pass an empty set.
	UpdateByID(ctx context.Context, id string, set map[string]any) (*domain.Event, error)
	// ListPublished returns published events ordered by start time.
	ListPublished(ctx context.Context) ([]domain.Event, error)
	// GetPublished returns the published event with the given id, or nil.
	GetPublished(ctx context.Context, id string) (*domain.Event, error)
	// AdjustRegisteredCount adds delta to the event's registered_count.
	AdjustRegisteredCount(ctx context.Context, id string, delta int) error
}
