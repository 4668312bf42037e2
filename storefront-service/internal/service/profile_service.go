package service

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/cache"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// ProfileService reads profiles through the cache and keeps the saved cart
// of a user in sync.
type ProfileService struct {
	repo  repository.ProfileRepository
	cache cache.ProfileCache
	sfg   singleflight.Group // Prevents cache stampede
	log   logrus.FieldLogger
}

func NewProfileService(repo repository.ProfileRepository, cache cache.ProfileCache, log logrus.FieldLogger) *ProfileService {
	return &ProfileService{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

func (s *ProfileService) GetProfile(ctx context.Context, userID int64) (*domain.Profile, error) {
	v, err, _ := s.sfg.Do(strconv.FormatInt(userID, 10), func() (interface{}, error) {
		profile, err := s.cache.Get(ctx, userID)
		if err == nil {
			return profile, nil
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			s.log.WithError(err).WithField("user_id", userID).Warn("cache get error")
		}

		profile, err = s.repo.GetByUserID(ctx, userID)
		if err != nil {
			return nil, err
		}

		go func() {
			if errSet := s.cache.Set(context.Background(), userID, profile); errSet != nil {
				s.log.WithError(errSet).WithField("user_id", userID).Warn("cache set error")
			}
		}()

		return profile, nil
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Profile), nil
}

// CreateDefault stores an empty profile for a freshly registered user.
func (s *ProfileService) CreateDefault(ctx context.Context, userID int64) (*domain.Profile, error) {
	profile := &domain.Profile{
		UserID:    userID,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// SaveCart overwrites the saved cart of the user with a serialized cart.
func (s *ProfileService) SaveCart(ctx context.Context, userID int64, serialized string) error {
	rev, err := s.repo.SetCart(ctx, userID, serialized)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Error("repo set cart error")
		return err
	}

	s.invalidateCache(userID)
	s.log.WithFields(logrus.Fields{"user_id": userID, "cart_revision": rev}).Debug("saved cart updated")
	return nil
}

// SavedCart returns the serialized cart kept on the profile of the user.
// It reads the repository directly: a cached profile may predate a SaveCart
// whose invalidation raced with an in-flight cache fill.
func (s *ProfileService) SavedCart(ctx context.Context, userID int64) (string, error) {
	profile, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return "", err
	}
	return profile.OldCart, nil
}

func (s *ProfileService) invalidateCache(userID int64) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, userID); err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("cache invalidate error")
	}
}
