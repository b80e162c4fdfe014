package auth

import "errors"

var (
	ErrInvalidCredentials         = errors.New("invalid email or password")
	ErrInvalidToken               = errors.New("invalid or expired token")
	ErrRefreshTokenRevoked        = errors.New("refresh token has been revoked")
	ErrRefreshTokenCookieNotFound = errors.New("refresh token cookie not found")
	ErrRefreshTokenCookieEmpty    = errors.New("refresh token cookie is empty")
	ErrUserNotFound               = errors.New("user not found")
	ErrNoSession                  = errors.New("no active session")

	// Google sign-in
	ErrGoogleAccountNotRegistered = errors.New("no account is registered for this Google email")
	ErrGoogleEmailNotVerified     = errors.New("google email is not verified")
	ErrGoogleAccessDeniedByUser   = errors.New("google access denied by user")
	ErrStateCookieEmpty           = errors.New("state cookie is empty")
	ErrStateParamEmpty            = errors.New("state parameter is empty")
	ErrStateMismatch              = errors.New("state mismatch")
	ErrCodeValueEmpty             = errors.New("authorization code is empty")
)
