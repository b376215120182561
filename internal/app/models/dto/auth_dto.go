package dto

import (
	"time"

	"github.com/huskybridge/marketplace/internal/app/models"
)

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"paws@northeastern.edu"`
	Password string `json:"password" binding:"required" example:"Husky2025!"`
}

// TokenResponse represents JWT token information
type TokenResponse struct {
	AccessToken           string `json:"accessToken"`
	TokenType             string `json:"tokenType" example:"Bearer"`
	ExpiresIn             int64  `json:"expiresIn" example:"3600"`
	RefreshToken          string `json:"refreshToken,omitempty"`
	RefreshTokenExpiresIn int64  `json:"refreshTokenExpiresIn,omitempty" example:"2592000"`
}

// RefreshTokenRequest represents refresh token request
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

// RegisterRequest represents a user registration request. Every new account gets the USER role.
type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email,max=255" example:"paws@northeastern.edu"`
	Password  string `json:"password" binding:"required,min=8,max=72" example:"Husky2025!"`
	FirstName string `json:"firstName" binding:"required,min=1,max=100" example:"Paws"`
	LastName  string `json:"lastName" binding:"required,min=1,max=100" example:"Husky"`
}

// UpdateProfileRequest is the body of PUT /auth/me
type UpdateProfileRequest struct {
	FirstName string `json:"firstName" binding:"required,min=1,max=100" example:"Paws"`
	LastName  string `json:"lastName" binding:"required,min=1,max=100" example:"Husky"`
}

// UserResponse represents the authenticated user's own profile
type UserResponse struct {
	ID          int64      `json:"id" example:"7"`
	Email       string     `json:"email" example:"paws@northeastern.edu"`
	FirstName   string     `json:"firstName" example:"Paws"`
	LastName    string     `json:"lastName" example:"Husky"`
	Role        string     `json:"role" example:"USER"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// PublicProfile is what other users can see about a user
type PublicProfile struct {
	ID          int64  `json:"id" example:"7"`
	DisplayName string `json:"displayName" example:"Paws Husky"`
}

// AuthResponse represents successful authentication response
type AuthResponse struct {
	Token TokenResponse `json:"token"`
	User  UserResponse  `json:"user"`
}

// FromUser converts a models.User to a UserResponse
func FromUser(user *models.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		FirstName:   user.FirstName,
		LastName:    user.LastName,
		Role:        string(user.RoleType),
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

// ToPublicProfile converts a models.User to a PublicProfile. A nil user yields a
// placeholder so deleted accounts still render.
func ToPublicProfile(id int64, user *models.User) PublicProfile {
	if user == nil {
		return PublicProfile{ID: id, DisplayName: "Unknown user"}
	}
	return PublicProfile{ID: user.ID, DisplayName: user.DisplayName()}
}
