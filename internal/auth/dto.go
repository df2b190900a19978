package auth

import (
	"github.com/freshfold/laundry-backend/internal/users"
)

// RegisterRequest is the customer sign-up payload.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Phone    string `json:"phone" validate:"max=32"`
	Suburb   string `json:"suburb" validate:"max=120"`
}

// LoginRequest captures the user credentials sent to the login endpoint.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest rotates a session. SessionID is the session_id returned at login.
type RefreshRequest struct {
	SessionID    string `json:"session_id" validate:"required"`
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// MakeAdminRequest promotes an existing account using the shared admin secret.
type MakeAdminRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Secret string `json:"secret"`
}

// AuthResponse contains the tokens and user produced by register, login and refresh.
type AuthResponse struct {
	AccessToken  string         `json:"access_token"`
	RefreshToken string         `json:"refresh_token"`
	SessionID    string         `json:"session_id"`
	User         *users.UserDTO `json:"user"`
}
