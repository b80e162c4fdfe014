package user

import (
	"context"
	"strings"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type passthroughTx struct{}

func (passthroughTx) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memoryUserRepo struct {
	users map[string]user.User
	roles map[string]user.Role
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[string]user.User{}, roles: map[string]user.Role{}}
}

func (m *memoryUserRepo) GetByEmail(_ context.Context, email string) (user.User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return user.User{}, user.ErrUserNotFound
}

func (m *memoryUserRepo) GetByID(_ context.Context, id string) (user.User, error) {
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrUserNotFound
	}
	u.Role = m.roles[id]
	return u, nil
}

func (m *memoryUserRepo) List(context.Context) ([]user.User, error) {
	out := make([]user.User, 0, len(m.users))
	for id, u := range m.users {
		u.Role = m.roles[id]
		out = append(out, u)
	}
	return out, nil
}

func (m *memoryUserRepo) Create(ctx context.Context, u user.User) (user.User, error) {
	if _, err := m.GetByEmail(ctx, u.Email); err == nil {
		return user.User{}, user.ErrUserEmailExists
	}
	u.ID = uuid.NewString()
	m.users[u.ID] = u
	return u, nil
}

func (m *memoryUserRepo) UpdatePassword(_ context.Context, id, hash string) error {
	u, ok := m.users[id]
	if !ok {
		return user.ErrUserNotFound
	}
	u.PasswordHash = &hash
	m.users[id] = u
	return nil
}

func (m *memoryUserRepo) LinkGoogleAccount(context.Context, string, string) error { return nil }

func (m *memoryUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.users[id]; !ok {
		return user.ErrUserNotFound
	}
	delete(m.users, id)
	delete(m.roles, id)
	return nil
}

func (m *memoryUserRepo) GetRole(_ context.Context, id string) (user.Role, error) {
	r, ok := m.roles[id]
	if !ok {
		return "", user.ErrRoleNotFound
	}
	return r, nil
}

func (m *memoryUserRepo) SetRole(_ context.Context, id string, role user.Role) error {
	if _, ok := m.users[id]; !ok {
		return user.ErrUserNotFound
	}
	m.roles[id] = role
	return nil
}

func TestCreateUser(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewUserService(passthroughTx{}, repo)
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, user.CreateUserRequest{Email: "Clerk@Example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", created.Email)
	assert.Equal(t, "user", created.Role)
	assert.Equal(t, user.RoleUser, repo.roles[created.ID])

	stored := repo.users[created.ID]
	require.NotNil(t, stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*stored.PasswordHash), []byte("s3cret-pass")))

	_, err = svc.CreateUser(ctx, user.CreateUserRequest{Email: "clerk@example.com", Password: "another-pass"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)

	_, err = svc.CreateUser(ctx, user.CreateUserRequest{Email: "x@example.com", Password: "short"})
	assert.Error(t, err)
}

func TestSelfProtection(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewUserService(passthroughTx{}, repo)

	admin, err := svc.CreateUser(context.Background(), user.CreateUserRequest{Email: "admin@example.com", Password: "admin-pass-1", Role: "admin"})
	require.NoError(t, err)
	ctx := session.WithSession(context.Background(), session.Session{UserID: admin.ID, Role: user.RoleAdmin})

	_, err = svc.UpdateRole(ctx, user.UpdateUserRoleRequest{ID: admin.ID, Role: "user"})
	assert.ErrorIs(t, err, user.ErrCannotDemoteSelf)
	assert.ErrorIs(t, svc.DeleteUser(ctx, admin.ID), user.ErrCannotDeleteSelf)

	other, err := svc.CreateUser(ctx, user.CreateUserRequest{Email: "other@example.com", Password: "other-pass-1"})
	require.NoError(t, err)

	promoted, err := svc.UpdateRole(ctx, user.UpdateUserRoleRequest{ID: other.ID, Role: "admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin", promoted.Role)

	require.NoError(t, svc.DeleteUser(ctx, other.ID))
	_, err = svc.UpdateRole(ctx, user.UpdateUserRoleRequest{ID: other.ID, Role: "user"})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestChangePassword(t *testing.T) {
	repo := newMemoryUserRepo()
	svc := NewUserService(passthroughTx{}, repo)

	created, err := svc.CreateUser(context.Background(), user.CreateUserRequest{Email: "me@example.com", Password: "old-password"})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), user.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"})
	assert.ErrorIs(t, err, auth.ErrNoSession)

	ctx := session.WithSession(context.Background(), session.Session{UserID: created.ID, Role: user.RoleUser})
	err = svc.ChangePassword(ctx, user.ChangePasswordRequest{CurrentPassword: "wrong-password", NewPassword: "new-password"})
	assert.ErrorIs(t, err, user.ErrInvalidPassword)

	require.NoError(t, svc.ChangePassword(ctx, user.ChangePasswordRequest{CurrentPassword: "old-password", NewPassword: "new-password"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*repo.users[created.ID].PasswordHash), []byte("new-password")))

	require.NoError(t, svc.ResetPassword(ctx, user.ResetPasswordRequest{ID: created.ID, Password: "reset-password"}))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*repo.users[created.ID].PasswordHash), []byte("reset-password")))
}
