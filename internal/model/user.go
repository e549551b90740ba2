package model

import "time"

// Roles stored on users.  ADMIN manages rooms, slots and the whole
// reservation book; CLIENT books for themselves.
const (
	RoleAdmin  = "ADMIN"
	RoleClient = "CLIENT"
)

// User represents an application user record as stored in the `users`
// table.  The password hash never leaves the repository layer; handlers
// expose separate response types.
type User struct {
	ID           uint64    // users.id
	Username     string    // users.username
	Email        string    // users.email
	PasswordHash string    // users.password_hash
	Role         string    // users.role (ADMIN | CLIENT)
	IsActive     bool      // users.is_active
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Actor is the authenticated identity acting on a ledger operation.  It
// is always passed explicitly; nothing reads identity from ambient
// request state below the handler layer.
type Actor struct {
	ID       uint64
	Username string
	Email    string
	Role     string
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
