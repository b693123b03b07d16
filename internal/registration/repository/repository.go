// Package repository persists event registrations.
package repository

import (
	"context"

	"horizon/backend/internal/registration/domain"
)

// Repository is the registration storage contract.
type Repository interface {
	// Find returns the registration for the (event, attendee) pair, or nil.
	Find(ctx context.Context, eventID, universityUID string) (*domain.Registration, error)
	Insert(ctx context.Context, reg *domain.Registration) error
	// Delete removes the registration and reports whether one existed.
	Delete(ctx context.Context, eventID, universityUID string) (bool, error)
}
