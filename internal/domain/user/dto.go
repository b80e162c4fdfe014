package user

import (
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/validator"
)

// UserResponse represents user data in API responses
type UserResponse struct {
	ID            string  `json:"id"`
	Email         string  `json:"email"`
	FullName      *string `json:"full_name,omitempty"`
	Role          string  `json:"role"`
	OAuthProvider *string `json:"oauth_provider,omitempty"`
	CreatedAt     string  `json:"created_at"`
}

// CreateUserRequest represents request to create a new user
type CreateUserRequest struct {
	Email    string  `json:"email"`
	FullName *string `json:"full_name,omitempty"`
	Password string  `json:"password"`
	Role     string  `json:"role"`
}

func (r *CreateUserRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "email is required",
		})
	} else if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{
			Field:   "email",
			Message: "invalid email format",
		})
	}

	errs = append(errs, validatePassword("password", r.Password)...)

	if validator.IsEmpty(r.Role) {
		r.Role = string(RoleUser)
	} else if !Role(r.Role).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: admin, user",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateUserRoleRequest represents request to update user role
type UpdateUserRoleRequest struct {
	ID   string `json:"-"`
	Role string `json:"role"`
}

func (r *UpdateUserRoleRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}

	if !Role(r.Role).Valid() {
		errs = append(errs, validator.ValidationError{
			Field:   "role",
			Message: "role must be one of: admin, user",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ResetPasswordRequest is an admin setting another user's password.
type ResetPasswordRequest struct {
	ID       string `json:"-"`
	Password string `json:"password"`
}

func (r *ResetPasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	errs = append(errs, validatePassword("password", r.Password)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ChangePasswordRequest is the signed-in user changing their own password.
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (r *ChangePasswordRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.CurrentPassword) {
		errs = append(errs, validator.ValidationError{
			Field:   "current_password",
			Message: "current_password is required",
		})
	}
	errs = append(errs, validatePassword("new_password", r.NewPassword)...)

	if len(errs) > 0 {
		return errs
	}

	return nil
}

func validatePassword(field, password string) validator.ValidationErrors {
	var errs validator.ValidationErrors
	if validator.IsEmpty(password) {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " is required",
		})
	} else if len(password) < 8 {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must be at least 8 characters",
		})
	} else if len(password) > 72 {
		errs = append(errs, validator.ValidationError{
			Field:   field,
			Message: field + " must not exceed 72 characters",
		})
	}
	return errs
}
