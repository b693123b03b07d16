package repository

import (
	"context"
	"errors"

	"horizon/backend/internal/user/domain"
)

// ErrDuplicateUser is returned by Create when the email or university uid is already taken.
var ErrDuplicateUser = errors.New("email or university uid already registered")

// Repository defines persistence for users.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
}
