package dto

import "time"

// RegisterRequest creates a buyer or seller account.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	FullName string `json:"full_name" validate:"required,min=2,max=120"`
	Phone    string `json:"phone" validate:"omitempty,max=32"`
	Role     string `json:"role" validate:"required,oneof=SELLER BUYER"`
}

// LoginRequest authenticates an existing account.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UpdateProfileRequest edits the caller's own profile.
type UpdateProfileRequest struct {
	FullName        *string `json:"full_name" validate:"omitempty,min=2,max=120"`
	Phone           *string `json:"phone" validate:"omitempty,max=32"`
	ProfileImageURL *string `json:"profile_image_url" validate:"omitempty,url"`
}

// ChangePasswordRequest rotates the caller's password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,max=72"`
}

// UserResponse is the public view of an account.
type UserResponse struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	Role            string    `json:"role"`
	FullName        string    `json:"full_name"`
	Phone           string    `json:"phone,omitempty"`
	ProfileImageURL string    `json:"profile_image_url,omitempty"`
	IsActive        bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
}

// AuthResponse pairs a signed token with the authenticated account.
type AuthResponse struct {
	Token string       `json:"token"`
	User  UserResponse `json:"user"`
}
