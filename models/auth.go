// ABOUTME: Auth request/response models for the BFF session pattern
// ABOUTME: Defines session structure and login/register/logout API contracts

package models

import "time"

// LoginRequest represents credentials for authentication against the gallery API
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterRequest represents a new account registration
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Surname  string `json:"surname"`
	Password string `json:"password"`
}

// LoginResponse represents the result of a login attempt. Token is a locally
// signed identity assertion for Authorization-header clients; the upstream
// bearer token itself never leaves the server.
type LoginResponse struct {
	Success  bool     `json:"success"`
	Username string   `json:"username,omitempty"`
	UserID   int      `json:"user_id,omitempty"`
	Roles    []string `json:"roles,omitempty"`
	Token    string   `json:"token,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// RegisterResponse represents the result of a registration attempt
type RegisterResponse struct {
	Success     bool                `json:"success"`
	Message     string              `json:"message,omitempty"`
	Error       string              `json:"error,omitempty"`
	FieldErrors map[string][]string `json:"field_errors,omitempty"`
}

// UserInfoResponse represents the current user's authentication state
type UserInfoResponse struct {
	Authenticated bool     `json:"authenticated"`
	UserID        int      `json:"user_id,omitempty"`
	Username      string   `json:"username,omitempty"`
	Email         string   `json:"email,omitempty"`
	Surname       string   `json:"surname,omitempty"`
	Roles         []string `json:"roles,omitempty"`
}

// AuthUser is the identity the gallery API asserts after login or /auth/me.
// Roles are normalized to canonical ROLE_ form before this struct is built.
type AuthUser struct {
	ID       int
	Username string
	Email    string
	Surname  string
	Enabled  bool
	Roles    []string
}

// LoginResult pairs the upstream bearer token with the asserted identity.
type LoginResult struct {
	Token string
	User  AuthUser
}

// Session stores server-side authentication state.
// The upstream bearer token is never exposed to the client.
type Session struct {
	ID          string    `json:"id"`
	UserID      int       `json:"user_id"`
	Username    string    `json:"username"`
	Email       string    `json:"email"`
	Surname     string    `json:"surname"`
	Roles       []string  `json:"roles"`
	AccessToken string    `json:"-"` // Never expose to client
	CSRFToken   string    `json:"-"` // Delivered once via cookie at login
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
