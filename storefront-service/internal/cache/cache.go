package cache

import (
	"context"
	"errors"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
)

type ProfileCache interface {
	Get(ctx context.Context, userID int64) (*domain.Profile, error)
	Set(ctx context.Context, userID int64, profile *domain.Profile) error
	Delete(ctx context.Context, userID int64) error
}

var ErrCacheMiss = errors.New("cache miss")
