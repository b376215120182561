package services

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/app/models/dto"
	"github.com/huskybridge/marketplace/internal/pkg/apperrors"
	jwtauth "github.com/huskybridge/marketplace/internal/pkg/auth"
)

func newTestAuthService(t *testing.T) (*AuthService, *memStore, *jwtauth.JWTService) {
	t.Helper()
	store := newMemStore()
	jwtService := jwtauth.NewJWTService(jwtauth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Minute,
		RefreshTokenExp: time.Hour,
		TokenIssuer:     "huskybridge.test",
	})
	return NewAuthService(memUsers{store}, memTokens{store}, jwtService, zerolog.Nop()), store, jwtService
}

func registerRequest() *dto.RegisterRequest {
	return &dto.RegisterRequest{
		Email:     "Paws@Northeastern.edu",
		Password:  "Husky2025",
		FirstName: "Paws",
		LastName:  "Husky",
	}
}

func TestRegister(t *testing.T) {
	svc, _, jwtService := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	assert.Equal(t, "paws@northeastern.edu", resp.User.Email)
	assert.Equal(t, string(models.RoleUser), resp.User.Role)
	assert.Equal(t, "Bearer", resp.Token.TokenType)
	assert.NotEmpty(t, resp.Token.RefreshToken)

	claims, err := jwtService.ValidateToken(resp.Token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)

	_, err = svc.Register(ctx, registerRequest())
	assert.ErrorIs(t, err, apperrors.ErrEmailAlreadyExists)
}

func TestRegisterPasswordRules(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	for _, password := range []string{"short1", "onlyletters", "1234567890"} {
		req := registerRequest()
		req.Password = password
		_, err := svc.Register(context.Background(), req)
		assert.ErrorIs(t, err, apperrors.ErrValidationFailed, password)
	}
}

func TestLogin(t *testing.T) {
	svc, store, _ := newTestAuthService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	resp, err := svc.Login(ctx, &dto.LoginRequest{Email: "paws@northeastern.edu", Password: "Husky2025"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, resp.User.ID)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "paws@northeastern.edu", Password: "wrong-password1"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "nobody@northeastern.edu", Password: "Husky2025"})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)

	store.users[registered.User.ID].IsActive = false
	_, err = svc.Login(ctx, &dto.LoginRequest{Email: "paws@northeastern.edu", Password: "Husky2025"})
	assert.ErrorIs(t, err, apperrors.ErrAccountDisabled)
}

func TestRefreshTokenRotates(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(ctx, registered.Token.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, registered.Token.RefreshToken, rotated.Token.RefreshToken)

	_, err = svc.RefreshToken(ctx, registered.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)

	_, err = svc.RefreshToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)

	require.NoError(t, svc.Logout(ctx, rotated.Token.RefreshToken))
	_, err = svc.RefreshToken(ctx, rotated.Token.RefreshToken)
	assert.ErrorIs(t, err, apperrors.ErrTokenRevoked)
}

func TestGetProfile(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	ctx := context.Background()
	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	profile, err := svc.GetProfile(ctx, registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Paws", profile.FirstName)

	_, err = svc.GetProfile(ctx, 9999)
	assert.ErrorIs(t, err, apperrors.ErrResourceNotFound)

	_, err = svc.GetProfile(ctx, 0)
	assert.ErrorIs(t, err, apperrors.ErrUnauthenticated)
}
