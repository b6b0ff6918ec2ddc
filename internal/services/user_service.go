package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pocketchat/internal/domain"
	"pocketchat/internal/repository"
	chat_errors "pocketchat/pkg/errors"

	"github.com/google/uuid"
)

const searchResultLimit = 10

// UserCache is the read-through profile cache. A nil cache disables caching.
type UserCache interface {
	GetUser(ctx context.Context, externalID string) (*domain.User, error)
	SetUser(ctx context.Context, u domain.User) error
	InvalidateUser(ctx context.Context, externalID string) error
}

type UserService struct {
	repo  repository.UserRepository
	cache UserCache
}

func NewUserService(repo repository.UserRepository, cache UserCache) *UserService {
	return &UserService{repo: repo, cache: cache}
}

type CreateUserInput struct {
	ExternalID     string
	Role           domain.Role
	CreatedAt      int64 // epoch millis from the client; zero means now
	Name           string
	ProfileDetails *domain.ProfileDetails
}

// CreateUser is idempotent: when the external id is already registered the
// existing record is returned unchanged, including when a concurrent create
// wins the insert race.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (domain.User, error) {
	if input.ExternalID == "" || input.Name == "" {
		return domain.User{}, fmt.Errorf("%w: user id and name are required", chat_errors.ErrInvalidInput)
	}
	if !input.Role.Valid() {
		return domain.User{}, fmt.Errorf("%w: unknown role %q", chat_errors.ErrInvalidInput, input.Role)
	}
	if input.ProfileDetails != nil && input.ProfileDetails.Email != nil {
		if err := validateEmail(*input.ProfileDetails.Email); err != nil {
			return domain.User{}, err
		}
	}

	existing, err := s.repo.GetByExternalID(ctx, input.ExternalID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, chat_errors.ErrNotFound) {
		return domain.User{}, err
	}

	createdAt := time.Now()
	if input.CreatedAt > 0 {
		createdAt = time.UnixMilli(input.CreatedAt)
	}
	u := domain.User{
		ID:             uuid.New(),
		ExternalID:     input.ExternalID,
		Role:           input.Role,
		Name:           input.Name,
		ProfileDetails: input.ProfileDetails,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	if err := s.repo.Create(ctx, &u); err != nil {
		if errors.Is(err, chat_errors.ErrAlreadyExists) {
			// Lost the insert race; the winner's row is the result.
			return s.repo.GetByExternalID(ctx, input.ExternalID)
		}
		return domain.User{}, err
	}
	return u, nil
}

func (s *UserService) ReadUser(ctx context.Context, externalID string) (domain.User, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetUser(ctx, externalID); err == nil && cached != nil {
			return *cached, nil
		}
	}
	u, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return domain.User{}, err
	}
	if s.cache != nil {
		_ = s.cache.SetUser(ctx, u)
	}
	return u, nil
}

// SearchUsers matches term case-insensitively against name or profile
// email, excluding the caller. An empty term yields an empty result.
func (s *UserService) SearchUsers(ctx context.Context, term, excludeExternalID string) ([]domain.User, error) {
	if term == "" {
		return []domain.User{}, nil
	}
	return s.repo.Search(ctx, term, excludeExternalID, searchResultLimit)
}

type UpdateProfileInput struct {
	Name           *string
	ProfileDetails *domain.ProfileDetails
}

// UpdateProfileDetails applies a partial update. An empty name counts as
// absent, so supplying nothing to change is an error; a supplied
// ProfileDetails replaces the stored document.
func (s *UserService) UpdateProfileDetails(ctx context.Context, externalID string, input UpdateProfileInput) (domain.User, error) {
	u, err := s.repo.GetByExternalID(ctx, externalID)
	if err != nil {
		return domain.User{}, err
	}

	newName := input.Name != nil && *input.Name != ""
	if !newName && input.ProfileDetails == nil {
		return domain.User{}, fmt.Errorf("%w: no update data provided", chat_errors.ErrInvalidInput)
	}
	if input.ProfileDetails != nil && input.ProfileDetails.Email != nil {
		if err := validateEmail(*input.ProfileDetails.Email); err != nil {
			return domain.User{}, err
		}
	}

	if newName {
		u.Name = *input.Name
	}
	if input.ProfileDetails != nil {
		u.ProfileDetails = input.ProfileDetails
	}
	u.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, u); err != nil {
		return domain.User{}, err
	}
	if s.cache != nil {
		_ = s.cache.InvalidateUser(ctx, externalID)
	}
	return u, nil
}
