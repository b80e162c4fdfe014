package postgresql_test

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/repository/postgresql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestUserRepository_CreateAndRole(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)
	hashStr := string(hash)

	created, err := repo.Create(ctx, user.User{Email: "admin@example.com", PasswordHash: &hashStr})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	_, err = repo.GetRole(ctx, created.ID)
	assert.ErrorIs(t, err, user.ErrRoleNotFound)

	require.NoError(t, repo.SetRole(ctx, created.ID, user.RoleAdmin))
	role, err := repo.GetRole(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, role)

	byEmail, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byEmail.ID)
	require.NotNil(t, byEmail.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(*byEmail.PasswordHash), []byte("password123")))
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, user.User{Email: "dup@example.com"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, user.User{Email: "dup@example.com"})
	assert.ErrorIs(t, err, user.ErrUserEmailExists)
}

func TestUserRepository_NotFound(t *testing.T) {
	db := newTestDB(t)
	repo := postgresql.NewUserRepository(db)
	ctx := context.Background()

	_, err := repo.GetByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	err = repo.Delete(ctx, "019a0000-0000-7000-8000-000000000000")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
