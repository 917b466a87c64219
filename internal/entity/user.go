package entity

import (
	"time"

	"github.com/uptrace/bun"
)

// Roles recognised by the marketplace.
const (
	RoleAdmin  = "ADMIN"
	RoleSeller = "SELLER"
	RoleBuyer  = "BUYER"
)

// User represents a marketplace account (buyer, seller, or admin).
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID              int64     `bun:",pk,autoincrement" json:"id"`
	Email           string    `bun:"email" json:"email"`
	PasswordHash    string    `bun:"password_hash" json:"-"`
	Role            string    `bun:"role" json:"role"`
	FullName        string    `bun:"full_name" json:"full_name"`
	Phone           string    `bun:"phone,nullzero" json:"phone,omitempty"`
	ProfileImageURL string    `bun:"profile_image_url,nullzero" json:"profile_image_url,omitempty"`
	IsActive        bool      `bun:"is_active" json:"is_active"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero" json:"updated_at"`
}

// ValidRole reports whether role is one of the recognised values.
func ValidRole(role string) bool {
	switch role {
	case RoleAdmin, RoleSeller, RoleBuyer:
		return true
	}
	return false
}
