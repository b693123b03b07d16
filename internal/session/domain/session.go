package domain

import (
	"time"

	userdomain "horizon/backend/internal/user/domain"
)

// RefreshSession is one refresh token's server-side record, keyed by the
// SHA-256 digest of the raw token. The raw token itself is never stored.
//
// A session is usable iff !Revoked && now < ExpiresAt. Revocation is terminal:
// rotation, logout, and device mismatch all end here.
type RefreshSession struct {
	TokenHash  string          `bson:"token_hash"`
	UserID     string          `bson:"user_id"`
	Role       userdomain.Role `bson:"role"`
	DeviceID   string          `bson:"device_id"`
	ExpiresAt  time.Time       `bson:"expires_at"`
	Revoked    bool            `bson:"revoked"`
	CreatedAt  time.Time       `bson:"created_at"`
	LastUsedAt *time.Time      `bson:"last_used_at,omitempty"` // nil until first successful validation
}

// Usable reports whether the session can still be exchanged at the given instant.
// Reads must not rely on the store's TTL purge being timely.
func (s *RefreshSession) Usable(now time.Time) bool {
	return s != nil && !s.Revoked && now.Before(s.ExpiresAt)
}
