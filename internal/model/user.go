package model

import "time"

// Roles stored in the users.role column. Admins may manage the roster and
// taxonomies; regular users only read them.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User mirrors the 'users' table. PasswordChangedAt is the session
// invalidation marker: tokens issued before it stop validating. It is nil
// for accounts whose password was never reset.
type User struct {
	ID                uint64
	Username          string
	PasswordHash      string
	Name              string
	Role              string
	PasswordChangedAt *time.Time
	LastSignedIn      time.Time
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicUser is the projection returned to clients. The password hash never
// leaves the repository layer.
type PublicUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Role     string `json:"role"`
}

// Public returns the client-facing projection of a user.
func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Username: u.Username, Name: u.Name, Role: u.Role}
}
