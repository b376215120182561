// Package seed creates the data a fresh deployment needs before it can be moderated.
package seed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	appModels "github.com/huskybridge/marketplace/internal/app/models"
	"github.com/huskybridge/marketplace/internal/pkg/auth"
)

// UserStore is the part of the user repository the seeder needs
type UserStore interface {
	EmailExists(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *appModels.User) error
}

// AdminAccount describes the administrator created on first start
type AdminAccount struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
}

// ErrAdminPasswordMissing is returned when an admin email is configured without a password
var ErrAdminPasswordMissing = errors.New("admin password is not configured")

// CreateDefaultAdmin creates the administrator account if no user owns its email yet.
// It returns created=false when the account already exists or no email is configured.
func CreateDefaultAdmin(ctx context.Context, users UserStore, account AdminAccount, lgr zerolog.Logger) (created bool, err error) {
	email := strings.ToLower(strings.TrimSpace(account.Email))
	if email == "" {
		lgr.Info().Msg("No admin email configured, skipping admin creation")
		return false, nil
	}

	exists, err := users.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return false, fmt.Errorf("check admin user: %w", err)
	}
	if exists {
		lgr.Info().Str("email", email).Msg("Admin user already exists, skipping creation")
		return false, nil
	}

	if account.Password == "" {
		return false, ErrAdminPasswordMissing
	}

	hashedPassword, err := auth.HashPassword(account.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return false, err
	}

	admin := &appModels.User{
		Email:     email,
		Password:  hashedPassword,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		RoleType:  appModels.RoleAdmin,
		IsActive:  true,
	}
	if err := users.Create(ctx, admin); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return false, fmt.Errorf("create admin user: %w", err)
	}

	lgr.Info().Int64("adminID", admin.ID).Str("email", email).Msg("Default admin user created successfully")
	return true, nil
}
