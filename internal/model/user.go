package model

import "time"

// User represents a user in the database.
type User struct {
	ID                 string
	Name               string
	Email              string
	PasswordHash       string
	LastPasswordChange time.Time
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// CreateUserRequest represents a user registration request.
type CreateUserRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest represents a user login request.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UpdateNameRequest struct {
	Name string `json:"name"`
}

// AuthenticateRequest re-proves the password before a credential change.
type AuthenticateRequest struct {
	Password string `json:"password"`
}

type UpdateEmailRequest struct {
	Email        string `json:"email"`
	AuthPassword string `json:"authPassword"`
}

type UpdatePasswordRequest struct {
	NewPassword  string `json:"newPassword"`
	AuthPassword string `json:"authPassword"`
}

type DeleteUserRequest struct {
	AuthPassword string `json:"authPassword"`
}

// AuthResponse represents an authentication response with a JWT token.
type AuthResponse struct {
	Success   bool   `json:"success"`
	AuthToken string `json:"authToken"`
}

// UserResponse represents user data safe for API responses (no password hash).
type UserResponse struct {
	ID                 string    `json:"id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	LastPasswordChange time.Time `json:"lastPasswordChange"`
	CreatedAt          time.Time `json:"createdAt"`
}

// ToResponse projects out the password hash.
func (u User) ToResponse() UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Name:               u.Name,
		Email:              u.Email,
		LastPasswordChange: u.LastPasswordChange,
		CreatedAt:          u.CreatedAt,
	}
}

// PasswordChange is the outcome of a password update. Changed is false when the
// request was declined because the new password equals the current one.
type PasswordChange struct {
	Changed bool
}
