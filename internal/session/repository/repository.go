package repository

import (
	"context"
	"errors"
	"time"

	"horizon/backend/internal/session/domain"
)

// ErrDuplicateToken is returned by Insert when a session with the same token hash
// already exists. Uniqueness is a hard constraint, not a retry condition.
var ErrDuplicateToken = errors.New("refresh token hash already exists")

// Repository defines persistence for refresh sessions.
//
// Expired documents are purged by the store's TTL mechanism on expires_at;
// callers must still filter on expiry explicitly because the purge is not timely.
type Repository interface {
	// FindActive returns the non-revoked, non-expired session for tokenHash, or nil.
	FindActive(ctx context.Context, tokenHash string) (*domain.RefreshSession, error)
	// FindByUserAndDevice returns a non-revoked session for the (user, device) pair, or nil.
	FindByUserAndDevice(ctx context.Context, userID, deviceID string) (*domain.RefreshSession, error)
	// Insert persists a new session; returns ErrDuplicateToken on a hash collision.
	Insert(ctx context.Context, s *domain.RefreshSession) error
	// Revoke marks the session revoked. Idempotent; revoking an unknown hash is not an error.
	Revoke(ctx context.Context, tokenHash string) error
	// Touch records a successful validation at the given instant.
	Touch(ctx context.Context, tokenHash string, at time.Time) error
}
