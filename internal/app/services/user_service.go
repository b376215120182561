package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/app/repositories"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	"github.com/huskybridge/marketplace/internal/pkg/validation"
)

// UserService defines the user directory operations
type UserService interface {
	GetUserByID(ctx context.Context, id int64) (*dto.PublicProfile, error)
	UpdateUserProfile(ctx context.Context, actor *models.Actor, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo repositories.IUserRepository
	logger   zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(userRepo repositories.IUserRepository, logger zerolog.Logger) UserService {
	return &userServiceImpl{
		userRepo: userRepo,
		logger:   logger.With().Str("service", "user").Logger(),
	}
}

// GetUserByID resolves a user id to the profile other users may see
func (s *userServiceImpl) GetUserByID(ctx context.Context, id int64) (*dto.PublicProfile, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error finding user: %w", err)
	}

	profile := dto.ToPublicProfile(id, user)
	return &profile, nil
}

// UpdateUserProfile changes the caller's first and last name
func (s *userServiceImpl) UpdateUserProfile(ctx context.Context, actor *models.Actor, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if actor == nil {
		return nil, apperrors.ErrUnauthenticated
	}

	firstName := strings.TrimSpace(req.FirstName)
	lastName := strings.TrimSpace(req.LastName)
	if err := validateName("firstName", firstName); err != nil {
		return nil, err
	}
	if err := validateName("lastName", lastName); err != nil {
		return nil, err
	}

	user, err := s.userRepo.UpdateName(ctx, actor.UserID, firstName, lastName)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			// the token outlived its account
			return nil, apperrors.ErrUnauthenticated
		}
		s.logger.Error().Err(err).Int64("userID", actor.UserID).Msg("Error updating user profile")
		return nil, fmt.Errorf("error updating profile: %w", err)
	}

	s.logger.Info().Int64("userID", user.ID).Msg("User profile updated")
	profile := dto.FromUser(user)
	return &profile, nil
}

func validateName(field, name string) error {
	n := utf8.RuneCountInString(name)
	if n < validation.NameMinLength || n > validation.NameMaxLength {
		return apperrors.NewValidationError(field,
			fmt.Sprintf("%s must be between %d and %d characters", field, validation.NameMinLength, validation.NameMaxLength))
	}
	return nil
}
