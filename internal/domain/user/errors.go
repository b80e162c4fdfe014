package user

import "errors"

var (
	ErrUserNotFound            = errors.New("user not found")
	ErrUserEmailExists         = errors.New("email already registered")
	ErrRoleNotFound            = errors.New("role not found")
	ErrInvalidPassword         = errors.New("current password is incorrect")
	ErrCannotDeleteSelf        = errors.New("cannot delete your own account")
	ErrCannotDemoteSelf        = errors.New("cannot change your own role")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
)
