package user

import (
	"context"
)

type UserRepository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id string) (User, error)
	List(ctx context.Context) ([]User, error)
	Create(ctx context.Context, newUser User) (User, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	LinkGoogleAccount(ctx context.Context, userID, googleID string) error
	Delete(ctx context.Context, id string) error

	// GetRole looks up the role assigned to userID; ErrRoleNotFound when none.
	GetRole(ctx context.Context, userID string) (Role, error)
	SetRole(ctx context.Context, userID string, role Role) error
}
