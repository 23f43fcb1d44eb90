package dto

import "time"

// LoginRequest payload for POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Identity echoes the authenticated principal.
type Identity struct {
	SubjectID string `json:"subject_id"`
	Role      string `json:"role"`
}

// LoginResponse carries the issued token and its claims summary.
type LoginResponse struct {
	Token     string    `json:"token"`
	Identity  Identity  `json:"identity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RegisterRequest payload for admin-created accounts.
type RegisterRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// ChangePasswordRequest payload.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}
