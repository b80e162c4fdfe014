package postgresql

import (
	"context"
	"fmt"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `u.id, u.email, u.full_name, u.password_hash, u.oauth_provider, u.oauth_provider_id, u.created_at, u.updated_at`

func userDest(u *user.User) []any {
	return []any{
		&u.ID, &u.Email, &u.FullName, &u.PasswordHash,
		&u.OAuthProvider, &u.OAuthProviderID, &u.CreatedAt, &u.UpdatedAt,
	}
}

// GetByEmail implements user.UserRepository. Role is not loaded; see GetRole.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + userColumns + ` FROM users u WHERE lower(u.email) = lower($1)`

	var found user.User
	if err := q.QueryRow(ctx, query, email).Scan(userDest(&found)...); err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by email: %w", err)
	}
	return found, nil
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `, COALESCE(ur.role, 'user')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		WHERE u.id = $1
	`

	var found user.User
	if err := q.QueryRow(ctx, query, id).Scan(append(userDest(&found), &found.Role)...); err != nil {
		if err == pgx.ErrNoRows {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return found, nil
}

// List implements user.UserRepository.
func (r *userRepositoryImpl) List(ctx context.Context) ([]user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + userColumns + `, COALESCE(ur.role, 'user')
		FROM users u
		LEFT JOIN user_roles ur ON ur.user_id = u.id
		ORDER BY u.created_at ASC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		var u user.User
		if err := rows.Scan(append(userDest(&u), &u.Role)...); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

// Create implements user.UserRepository. The role row is written separately
// with SetRole.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users AS u (email, full_name, password_hash, oauth_provider, oauth_provider_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var created user.User
	err := q.QueryRow(ctx, query,
		newUser.Email,
		newUser.FullName,
		newUser.PasswordHash,
		newUser.OAuthProvider,
		newUser.OAuthProviderID,
	).Scan(userDest(&created)...)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, user.ErrUserEmailExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	created.Role = newUser.Role
	return created, nil
}

// UpdatePassword implements user.UserRepository.
func (r *userRepositoryImpl) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `UPDATE users SET password_hash = $1, updated_at = NOW() WHERE id = $2`, passwordHash, userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// LinkGoogleAccount implements user.UserRepository.
func (r *userRepositoryImpl) LinkGoogleAccount(ctx context.Context, userID, googleID string) error {
	q := GetQuerier(ctx, r.db)

	updateQuery := `
		UPDATE users
		SET oauth_provider = $1, oauth_provider_id = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := q.Exec(ctx, updateQuery, "google", googleID, userID)
	if err != nil {
		return fmt.Errorf("failed to link google account: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// Delete implements user.UserRepository.
func (r *userRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

// GetRole implements user.UserRepository.
func (r *userRepositoryImpl) GetRole(ctx context.Context, userID string) (user.Role, error) {
	q := GetQuerier(ctx, r.db)

	var role user.Role
	err := q.QueryRow(ctx, `SELECT role FROM user_roles WHERE user_id = $1`, userID).Scan(&role)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", user.ErrRoleNotFound
		}
		return "", fmt.Errorf("failed to get user role: %w", err)
	}
	return role, nil
}

// SetRole implements user.UserRepository.
func (r *userRepositoryImpl) SetRole(ctx context.Context, userID string, role user.Role) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role, updated_at = NOW()
	`
	if _, err := q.Exec(ctx, query, userID, role); err != nil {
		if isForeignKeyViolation(err) {
			return user.ErrUserNotFound
		}
		return fmt.Errorf("failed to set user role: %w", err)
	}
	return nil
}
