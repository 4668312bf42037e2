package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/domain"
	"github.com/Takamichi23/Nike-microservice/storefront-service/internal/repository"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials  = errors.New("invalid username or password")
	ErrInvalidRegistration = errors.New("invalid registration")
)

const (
	maxUsernameLen    = 150
	minPasswordLength = 8
)

// ProfileCreator creates the default profile of a new user.
type ProfileCreator interface {
	CreateDefault(ctx context.Context, userID int64) (*domain.Profile, error)
}

type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Password        string `json:"password1"`
	PasswordConfirm string `json:"password2"`
}

func (r Registration) Validate() error {
	n := utf8.RuneCountInString(r.Username)
	if n == 0 || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be 1 to %d characters", ErrInvalidRegistration, maxUsernameLen)
	}
	for _, c := range r.Username {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) && !strings.ContainsRune("@.+-_", c) {
			return fmt.Errorf("%w: username may contain only letters, digits and @/./+/-/_", ErrInvalidRegistration)
		}
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("%w: email is invalid", ErrInvalidRegistration)
	}
	if len(r.Password) < minPasswordLength {
		return fmt.Errorf("%w: password must contain at least %d characters", ErrInvalidRegistration, minPasswordLength)
	}
	if r.Password != r.PasswordConfirm {
		return fmt.Errorf("%w: passwords do not match", ErrInvalidRegistration)
	}
	return nil
}

type AccountService struct {
	users    repository.UserRepository
	profiles ProfileCreator
	cost     int
	log      logrus.FieldLogger
}

func NewAccountService(users repository.UserRepository, profiles ProfileCreator, log logrus.FieldLogger) *AccountService {
	return &AccountService{
		users:    users,
		profiles: profiles,
		cost:     bcrypt.DefaultCost,
		log:      log,
	}
}

// Register creates the user and then its default profile.
func (s *AccountService) Register(ctx context.Context, reg Registration) (*domain.User, error) {
	if err := reg.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     reg.Username,
		Email:        reg.Email,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	if _, err := s.profiles.CreateDefault(ctx, user.ID); err != nil {
		s.log.WithError(err).WithField("user_id", user.ID).Error("failed to create default profile")
		return nil, fmt.Errorf("create profile for user %d: %w", user.ID, err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

func (s *AccountService) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, repository.ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *AccountService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}
