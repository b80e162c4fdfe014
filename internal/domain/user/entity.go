package user

import "time"

type Role string

const (
	RoleAdmin Role = "admin" // full access
	RoleUser  Role = "user"  // scanner and read-only views
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// User is a dashboard account. The role lives in a separate table and is
// resolved on sign-in.
type User struct {
	ID              string
	Email           string
	FullName        *string
	PasswordHash    *string
	OAuthProvider   *string
	OAuthProviderID *string
	CreatedAt       time.Time
	UpdatedAt       time.Time

	// Join
	Role Role
}

// IsAdmin checks if user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
