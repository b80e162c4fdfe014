package user

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
)

type UserServiceImpl struct {
	tx database.Transactor
	user.UserRepository
}

func NewUserService(tx database.Transactor, userRepository user.UserRepository) user.UserService {
	return &UserServiceImpl{
		tx:             tx,
		UserRepository: userRepository,
	}
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ListUsers implements user.UserService.
func (s *UserServiceImpl) ListUsers(ctx context.Context) ([]user.UserResponse, error) {
	users, err := s.UserRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	responses := make([]user.UserResponse, 0, len(users))
	for _, u := range users {
		responses = append(responses, mapUserToResponse(u))
	}
	return responses, nil
}

// CreateUser implements user.UserService. The user row and its role are
// written together.
func (s *UserServiceImpl) CreateUser(ctx context.Context, req user.CreateUserRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return user.UserResponse{}, err
	}

	var created user.User
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		created, err = s.UserRepository.Create(txCtx, user.User{
			Email:        strings.ToLower(strings.TrimSpace(req.Email)),
			FullName:     req.FullName,
			PasswordHash: &hashed,
		})
		if err != nil {
			return err
		}
		created.Role = user.Role(req.Role)
		return s.UserRepository.SetRole(txCtx, created.ID, created.Role)
	})
	if err != nil {
		return user.UserResponse{}, err
	}

	return mapUserToResponse(created), nil
}

// UpdateRole implements user.UserService.
func (s *UserServiceImpl) UpdateRole(ctx context.Context, req user.UpdateUserRoleRequest) (user.UserResponse, error) {
	if err := req.Validate(); err != nil {
		return user.UserResponse{}, err
	}

	if sess, ok := session.FromContext(ctx); ok && sess.UserID == req.ID {
		return user.UserResponse{}, user.ErrCannotDemoteSelf
	}

	target, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return user.UserResponse{}, err
	}

	target.Role = user.Role(req.Role)
	if err := s.UserRepository.SetRole(ctx, target.ID, target.Role); err != nil {
		return user.UserResponse{}, fmt.Errorf("failed to set role: %w", err)
	}

	return mapUserToResponse(target), nil
}

// ResetPassword implements user.UserService.
func (s *UserServiceImpl) ResetPassword(ctx context.Context, req user.ResetPasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	target, err := s.UserRepository.GetByID(ctx, req.ID)
	if err != nil {
		return err
	}

	hashed, err := hashPassword(req.Password)
	if err != nil {
		return err
	}
	return s.UserRepository.UpdatePassword(ctx, target.ID, hashed)
}

// ChangePassword implements user.UserService.
func (s *UserServiceImpl) ChangePassword(ctx context.Context, req user.ChangePasswordRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	sess, ok := session.FromContext(ctx)
	if !ok {
		return auth.ErrNoSession
	}

	current, err := s.UserRepository.GetByID(ctx, sess.UserID)
	if err != nil {
		return err
	}
	if current.PasswordHash == nil {
		return user.ErrInvalidPassword
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*current.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return user.ErrInvalidPassword
		}
		return fmt.Errorf("failed to verify password: %w", err)
	}

	hashed, err := hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	return s.UserRepository.UpdatePassword(ctx, current.ID, hashed)
}

// DeleteUser implements user.UserService.
func (s *UserServiceImpl) DeleteUser(ctx context.Context, id string) error {
	if sess, ok := session.FromContext(ctx); ok && sess.UserID == id {
		return user.ErrCannotDeleteSelf
	}
	return s.UserRepository.Delete(ctx, id)
}

func mapUserToResponse(u user.User) user.UserResponse {
	resp := user.UserResponse{
		ID:            u.ID,
		Email:         u.Email,
		FullName:      u.FullName,
		Role:          string(u.Role),
		OAuthProvider: u.OAuthProvider,
	}
	if resp.Role == "" {
		resp.Role = string(user.RoleUser)
	}
	if !u.CreatedAt.IsZero() {
		resp.CreatedAt = u.CreatedAt.Format(time.RFC3339)
	}
	return resp
}
