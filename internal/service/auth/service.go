package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/auth"
	"github.com/cmlabs-hris/attendance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/attendance-backend-go/internal/pkg/session"
	"golang.org/x/crypto/bcrypt"
)

type AuthServiceImpl struct {
	tx database.Transactor
	user.UserRepository
	jwt.Service
	auth.RefreshTokenRepository
	listener session.Listener
}

func NewAuthService(tx database.Transactor, userRepository user.UserRepository, jwtService jwt.Service, refreshTokenRepository auth.RefreshTokenRepository, listener session.Listener) auth.AuthService {
	if listener == nil {
		listener = session.NewBroadcaster()
	}
	return &AuthServiceImpl{
		tx:                     tx,
		UserRepository:         userRepository,
		Service:                jwtService,
		RefreshTokenRepository: refreshTokenRepository,
		listener:               listener,
	}
}

// resolveRole never fails sign-in: a missing or unreadable role means the
// least privileged one.
func (a *AuthServiceImpl) resolveRole(ctx context.Context, userID string) user.Role {
	role, err := a.UserRepository.GetRole(ctx, userID)
	if err != nil {
		if !errors.Is(err, user.ErrRoleNotFound) {
			slog.Warn("role lookup failed, using default role", "user_id", userID, "error", err)
		}
		return user.RoleUser
	}
	if !role.Valid() {
		slog.Warn("unknown role, using default role", "user_id", userID, "role", role)
		return user.RoleUser
	}
	return role
}

// Login implements auth.AuthService.
func (a *AuthServiceImpl) Login(ctx context.Context, loginReq auth.LoginRequest, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if err := loginReq.Validate(); err != nil {
		return auth.TokenResponse{}, err
	}

	userData, err := a.UserRepository.GetByEmail(ctx, strings.TrimSpace(loginReq.Email))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrInvalidCredentials
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Cek password
	if userData.PasswordHash == nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*userData.PasswordHash), []byte(loginReq.Password)); err != nil {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	sess := session.Session{UserID: userData.ID, Email: userData.Email, Role: a.resolveRole(ctx, userData.ID)}
	return a.signIn(ctx, sess, sessionTrackReq)
}

// LoginWithGoogle implements auth.AuthService. Only existing accounts may
// sign in; the Google ID is linked on first use.
func (a *AuthServiceImpl) LoginWithGoogle(ctx context.Context, googleEmail string, googleID string, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	userData, err := a.UserRepository.GetByEmail(ctx, googleEmail)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.TokenResponse{}, auth.ErrGoogleAccountNotRegistered
		}
		return auth.TokenResponse{}, fmt.Errorf("failed to get user data by email: %w", err)
	}

	if userData.OAuthProviderID == nil {
		if err := a.UserRepository.LinkGoogleAccount(ctx, userData.ID, googleID); err != nil {
			return auth.TokenResponse{}, fmt.Errorf("failed to link google account: %w", err)
		}
	} else if *userData.OAuthProviderID != googleID {
		return auth.TokenResponse{}, auth.ErrInvalidCredentials
	}

	sess := session.Session{UserID: userData.ID, Email: userData.Email, Role: a.resolveRole(ctx, userData.ID)}
	return a.signIn(ctx, sess, sessionTrackReq)
}

func (a *AuthServiceImpl) signIn(ctx context.Context, sess session.Session, sessionTrackReq auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	var tokenResponse auth.TokenResponse

	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var err error
		tokenResponse.AccessToken, tokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(sess)
		if err != nil {
			return fmt.Errorf("failed to create access token: %w", err)
		}
		tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, err = a.Service.GenerateRefreshToken(sess.UserID)
		if err != nil {
			return fmt.Errorf("failed to create refresh token: %w", err)
		}

		err = a.CreateRefreshToken(txCtx, sess.UserID, tokenResponse.RefreshToken, tokenResponse.RefreshTokenExpiresIn, sessionTrackReq)
		if err != nil {
			return fmt.Errorf("failed to save refresh token to database: %w", err)
		}
		return nil
	})
	if err != nil {
		return auth.TokenResponse{}, err
	}

	tokenResponse.Session = mapSessionToResponse(sess)
	a.listener.OnSessionChange(ctx, session.Event{Kind: session.EventSignedIn, Session: sess, At: time.Now()})

	return tokenResponse, nil
}

// Logout implements auth.AuthService.
func (a *AuthServiceImpl) Logout(ctx context.Context, token string) error {
	var userID string

	err := a.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		var (
			isRevoked bool
			err       error
		)
		userID, isRevoked, err = a.RefreshTokenRepository.IsRefreshTokenRevoked(txCtx, token)
		if err != nil {
			return fmt.Errorf("failed to check if refresh token is revoked: %w", err)
		}
		if !isRevoked {
			if err := a.RefreshTokenRepository.RevokeRefreshToken(txCtx, token); err != nil {
				return fmt.Errorf("failed to revoke refresh token: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	if userID != "" {
		a.listener.OnSessionChange(ctx, session.Event{Kind: session.EventSignedOut, Session: session.Session{UserID: userID}, At: time.Now()})
	}
	return nil
}

// RefreshToken implements auth.AuthService.
func (a *AuthServiceImpl) RefreshToken(ctx context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if err := req.Validate(); err != nil {
		return auth.AccessTokenResponse{}, err
	}

	// 1. Verify signature, expiry and token type
	if _, err := a.Service.ValidateRefreshToken(req.RefreshToken); err != nil {
		return auth.AccessTokenResponse{}, auth.ErrInvalidToken
	}

	// 2. Check DB for revocation/expiry
	userID, isRevoked, err := a.RefreshTokenRepository.IsRefreshTokenRevoked(ctx, req.RefreshToken)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to check refresh token: %w", err)
	}
	if isRevoked {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}

	// 3. Get user
	userData, err := a.UserRepository.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return auth.AccessTokenResponse{}, auth.ErrUserNotFound
		}
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to get user: %w", err)
	}

	// 4. Generate new access token with a freshly resolved role
	sess := session.Session{UserID: userData.ID, Email: userData.Email, Role: a.resolveRole(ctx, userData.ID)}

	var accessTokenResponse auth.AccessTokenResponse
	accessTokenResponse.AccessToken, accessTokenResponse.AccessTokenExpiresIn, err = a.Service.GenerateAccessToken(sess)
	if err != nil {
		return auth.AccessTokenResponse{}, fmt.Errorf("failed to generate access token: %w", err)
	}

	a.listener.OnSessionChange(ctx, session.Event{Kind: session.EventRefreshed, Session: sess, At: time.Now()})
	return accessTokenResponse, nil
}

// Me implements auth.AuthService.
func (a *AuthServiceImpl) Me(ctx context.Context) (auth.SessionResponse, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return auth.SessionResponse{}, auth.ErrNoSession
	}
	return mapSessionToResponse(sess), nil
}

// SSEToken implements auth.AuthService.
func (a *AuthServiceImpl) SSEToken(ctx context.Context) (auth.SSETokenResponse, error) {
	sess, ok := session.FromContext(ctx)
	if !ok {
		return auth.SSETokenResponse{}, auth.ErrNoSession
	}

	token, expiresIn, err := a.Service.GenerateSSEToken(sess.UserID)
	if err != nil {
		return auth.SSETokenResponse{}, fmt.Errorf("failed to generate sse token: %w", err)
	}
	return auth.SSETokenResponse{Token: token, ExpiresIn: expiresIn}, nil
}

func mapSessionToResponse(sess session.Session) auth.SessionResponse {
	perms := user.RolePermissions[sess.Role]
	permissions := make([]string, 0, len(perms))
	for _, p := range perms {
		permissions = append(permissions, string(p))
	}
	return auth.SessionResponse{
		UserID:      sess.UserID,
		Email:       sess.Email,
		Role:        string(sess.Role),
		Permissions: permissions,
	}
}
