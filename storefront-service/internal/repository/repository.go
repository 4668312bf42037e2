package repository

import (
	"context"
	"errors"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
)

var (
	ErrProfileNotFound   = errors.New("profile not found")
	ErrProfileExists     = errors.New("profile already exists")
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateUsername = errors.New("username already taken")
)

// ProfileRepository stores one Profile per user.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID int64) (*domain.Profile, error)
	Create(ctx context.Context, profile *domain.Profile) error
	// SetCart overwrites the saved cart and returns the new cart revision.
	SetCart(ctx context.Context, userID int64, serialized string) (int64, error)
}

type UserRepository interface {
	// Create allocates the user id and stores the user.
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
