package domain

import "time"

const (
	RoleCustomer   = "CUSTOMER"
	RoleAdmin      = "ADMIN"
	RoleSuperAdmin = "SUPERADMIN"
)

// Role is reference data looked up by name or primary key; the API never creates roles.
type Role struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// User models an account that can authenticate against the API.
type User struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	EncryptedPassword string    `json:"-"`
	Image             *string   `json:"image"`
	RoleID            uint      `json:"roleId"`
	Role              *Role     `json:"role,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// RoleClaim is the role part of the session token payload.
type RoleClaim struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// Identity is the payload embedded into a session token. Clients decode it
// as {id, name, email, image, role: {id, name}}.
type Identity struct {
	ID    uint      `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Image *string   `json:"image"`
	Role  RoleClaim `json:"role"`
}

// NewIdentity derives the token payload from a user record and its resolved role.
func NewIdentity(user *User, role *Role) Identity {
	return Identity{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Image: user.Image,
		Role: RoleClaim{
			ID:   role.ID,
			Name: role.Name,
		},
	}
}
