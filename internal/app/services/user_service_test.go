package services

import (
	"context"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
)

func TestGetUserByID(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(memUsers{store}, zerolog.Nop())
	ctx := context.Background()
	id := store.addUser("Paws", "Husky", models.RoleUser)

	profile, err := svc.GetUserByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, profile.ID)
	assert.Equal(t, "Paws Husky", profile.DisplayName)

	_, err = svc.GetUserByID(ctx, id+100)
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)
}

func TestUpdateUserProfile(t *testing.T) {
	store := newMemStore()
	svc := NewUserService(memUsers{store}, zerolog.Nop())
	ctx := context.Background()
	actor := models.NewActor(store.addUser("Paws", "Husky", models.RoleUser), models.RoleUser)

	resp, err := svc.UpdateUserProfile(ctx, &actor, &dto.UpdateProfileRequest{FirstName: "  Pawsome ", LastName: "Husky"})
	require.NoError(t, err)
	assert.Equal(t, "Pawsome", resp.FirstName)
	assert.Equal(t, "Paws@northeastern.edu", resp.Email)

	profile, err := svc.GetUserByID(ctx, actor.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Pawsome Husky", profile.DisplayName)

	t.Run("rejections", func(t *testing.T) {
		_, err := svc.UpdateUserProfile(ctx, nil, &dto.UpdateProfileRequest{FirstName: "A", LastName: "B"})
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)

		_, err = svc.UpdateUserProfile(ctx, &actor, &dto.UpdateProfileRequest{FirstName: "   ", LastName: "Husky"})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

		_, err = svc.UpdateUserProfile(ctx, &actor, &dto.UpdateProfileRequest{FirstName: "Paws", LastName: strings.Repeat("x", 101)})
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

		ghost := models.NewActor(9999, models.RoleUser)
		_, err = svc.UpdateUserProfile(ctx, &ghost, &dto.UpdateProfileRequest{FirstName: "Paws", LastName: "Husky"})
		assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
	})
}
