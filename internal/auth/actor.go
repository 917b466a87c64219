package auth

import "github.com/agricoventas/platform/internal/entity"

// Actor identifies the authenticated caller inside the service layer.
type Actor struct {
	UserID int64
	Email  string
	Role   string
}

// Admin reports whether the actor holds the admin role.
func (a Actor) Admin() bool {
	return a.Role == entity.RoleAdmin
}

// Seller reports whether the actor holds the seller role.
func (a Actor) Seller() bool {
	return a.Role == entity.RoleSeller
}

// Actor converts verified claims into a service-layer actor.
func (c *Claims) Actor() Actor {
	return Actor{UserID: c.UserID, Email: c.Email, Role: c.Role}
}
