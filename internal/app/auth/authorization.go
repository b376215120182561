package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/repositories"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	"github.com/huskybridge/marketplace/internal/pkg/logger"
)

// AuthorizationService handles authorization operations
type AuthorizationService struct {
	userRepo repositories.IUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// RequireActor returns the actor or ErrUnauthenticated when there is none
func RequireActor(actor *models.Actor) (models.Actor, error) {
	if actor == nil || actor.UserID <= 0 {
		return models.Actor{}, apperrors.ErrUnauthenticated
	}
	return *actor, nil
}

// RequireAdmin checks the role carried by the actor. The role name is compared
// case-insensitively.
func RequireAdmin(actor *models.Actor) error {
	a, err := RequireActor(actor)
	if err != nil {
		return err
	}
	if !a.IsAdmin() {
		return apperrors.NewForbiddenError("administrator role required")
	}
	return nil
}

// ValidateAdmin checks the actor's role and then confirms against the stored
// account, so a demoted or disabled admin is refused before the token expires.
func (s *AuthorizationService) ValidateAdmin(ctx context.Context, actor *models.Actor) error {
	if err := RequireAdmin(actor); err != nil {
		return err
	}

	user, err := s.userRepo.GetByID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return apperrors.ErrUnauthenticated
		}
		logger.Error().Err(err).Int64("userID", actor.UserID).Msg("Error getting user by ID in ValidateAdmin")
		return fmt.Errorf("failed to load admin account: %w", err)
	}

	if !user.IsActive || !user.RoleType.IsAdmin() {
		logger.Warn().Int64("userID", actor.UserID).Str("role", string(user.RoleType)).Msg("Token role no longer matches account")
		return apperrors.NewForbiddenError("administrator role required")
	}
	return nil
}
