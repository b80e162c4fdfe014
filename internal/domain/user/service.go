package user

import "context"

type UserService interface {
	ListUsers(ctx context.Context) ([]UserResponse, error)
	CreateUser(ctx context.Context, req CreateUserRequest) (UserResponse, error)
	UpdateRole(ctx context.Context, req UpdateUserRoleRequest) (UserResponse, error)
	ResetPassword(ctx context.Context, req ResetPasswordRequest) error
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	DeleteUser(ctx context.Context, id string) error
}
