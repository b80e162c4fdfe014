package auth

import (
	"context"
)

type AuthService interface {
	Login(ctx context.Context, req LoginRequest, track SessionTrackingRequest) (TokenResponse, error)
	// LoginWithGoogle signs in an existing account; it never creates one.
	LoginWithGoogle(ctx context.Context, email string, googleID string, track SessionTrackingRequest) (TokenResponse, error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, req RefreshTokenRequest) (AccessTokenResponse, error)
	Me(ctx context.Context) (SessionResponse, error)
	SSEToken(ctx context.Context) (SSETokenResponse, error)
}
