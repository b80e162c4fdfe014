package auth

import "context"

// RefreshTokenRepository stores hashes of issued refresh tokens.
type RefreshTokenRepository interface {
	CreateRefreshToken(ctx context.Context, userID string, token string, expiresAt int64, track SessionTrackingRequest) error
	// IsRefreshTokenRevoked reports the owner and whether the token is revoked
	// or expired.
	IsRefreshTokenRevoked(ctx context.Context, token string) (userID string, revoked bool, err error)
	RevokeRefreshToken(ctx context.Context, token string) error
}
