// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/templates/social-backend/internal/core"
	"github.com/carterperez-dev/templates/social-backend/internal/metrics"
	"github.com/carterperez-dev/templates/social-backend/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenReuse         = errors.New("token reuse detected")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrAccountInactive    = errors.New("account is inactive")
)

// expiredTokenGrace is how long expired refresh tokens are kept so a late
// replay is still recognised as reuse rather than as an unknown token.
const expiredTokenGrace = 24 * time.Hour

type UserProvider interface {
	GetByIdentifier(ctx context.Context, identifier string) (*UserInfo, error)
	GetByID(ctx context.Context, id string) (*UserInfo, error)
	ExistsByEmailOrUsername(
		ctx context.Context,
		email, username string,
	) (bool, error)
	Create(ctx context.Context, u NewUser) (*UserInfo, error)
	TouchLastLogin(ctx context.Context, userID string) error
	IncrementTokenVersion(ctx context.Context, userID string) error
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	GetAuthProfile(ctx context.Context, userID string) (*UserProfile, error)
}

type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

type Service struct {
	repo         Repository
	jwt          *JWTManager
	userProvider UserProvider
	blacklist    TokenBlacklist
	passwords    *core.PasswordHasher
	logger       *slog.Logger
}

func NewService(
	repo Repository,
	jwt *JWTManager,
	userProvider UserProvider,
	blacklist TokenBlacklist,
	passwords *core.PasswordHasher,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:         repo,
		jwt:          jwt,
		userProvider: userProvider,
		blacklist:    blacklist,
		passwords:    passwords,
		logger:       logger,
	}
}

func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*RegisteredUser, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)

	exists, err := s.userProvider.ExistsByEmailOrUsername(ctx, email, username)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}
	if exists {
		return nil, ErrUserExists
	}

	passwordHash, err := s.passwords.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, NewUser{
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		FirstName:    strings.TrimSpace(req.FirstName),
		LastName:     strings.TrimSpace(req.LastName),
	})
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	metrics.RecordAction(metrics.ActionRegister)
	return toRegisteredUser(user), nil
}

// Login accepts an email or a username. Unknown, inactive and
// wrong-password attempts are indistinguishable to the caller.
func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
	userAgent, ipAddress string,
) (*LoginResponse, error) {
	user, err := s.userProvider.GetByIdentifier(ctx, strings.TrimSpace(req.Identifier))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // timing attack prevention - always verify to prevent enumeration
			_, _, _ = s.passwords.VerifyTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := s.passwords.VerifyTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid || !user.IsActive {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	if err := s.userProvider.TouchLastLogin(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("update last login: %w", err)
	}

	tokens, err := s.issueTokens(ctx, user, userAgent, ipAddress, "", "")
	if err != nil {
		return nil, err
	}

	profile, err := s.userProvider.GetAuthProfile(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	metrics.RecordAction(metrics.ActionLogin)
	return &LoginResponse{User: profile, TokenResponse: *tokens}, nil
}

// VerifyToken is the capability gate in front of every protected route.
// Beyond the signature it rejects revoked token ids, deactivated accounts
// and tokens minted before the user's last logout-all. The session role
// comes from the database so demotions take effect immediately.
func (s *Service) VerifyToken(
	ctx context.Context,
	token string,
	requiredRole string,
) (*middleware.Session, error) {
	claims, err := s.jwt.VerifyAccessToken(token)
	if err != nil {
		return nil, err
	}

	revoked, err := s.blacklist.IsRevoked(ctx, claims.TokenID)
	if err != nil {
		s.logger.WarnContext(ctx, "token blacklist unavailable, skipping check",
			"error", err,
		)
	}
	if revoked {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	user, err := s.userProvider.GetByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("verify token: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("verify token: %w", err)
	}

	if !user.IsActive {
		return nil, core.NewAppError(
			ErrAccountInactive,
			"account is inactive",
			http.StatusUnauthorized,
			core.CodeUnauthorized,
		)
	}

	if claims.TokenVersion < user.TokenVersion {
		return nil, fmt.Errorf("verify token: %w", core.ErrTokenRevoked)
	}

	if requiredRole != "" && user.Role != requiredRole {
		return nil, fmt.Errorf("verify token: %w", core.ErrForbidden)
	}

	return &middleware.Session{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenID:   claims.TokenID,
		ExpiresAt: claims.ExpiresAt,
	}, nil
}

func (s *Service) Refresh(
	ctx context.Context,
	refreshToken, userAgent, ipAddress string,
) (*TokenResponse, error) {
	storedToken, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenInvalid)
		}
		return nil, fmt.Errorf("find token: %w", err)
	}

	if storedToken.IsUsed {
		s.revokeFamily(ctx, storedToken)
		return nil, ErrTokenReuse
	}

	if !storedToken.IsValid() {
		if storedToken.IsRevoked() {
			return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
		}
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenExpired)
	}

	user, err := s.userProvider.GetByID(ctx, storedToken.UserID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("refresh: %w", core.ErrTokenRevoked)
	}

	tokens, err := s.issueTokens(
		ctx,
		user,
		userAgent,
		ipAddress,
		storedToken.FamilyID,
		storedToken.ID,
	)
	if errors.Is(err, core.ErrNotFound) {
		s.revokeFamily(ctx, storedToken)
		return nil, ErrTokenReuse
	}
	if err != nil {
		return nil, err
	}

	return tokens, nil
}

// Logout revokes the given refresh token, if any, and blacklists the access
// token that made the request until it would have expired.
func (s *Service) Logout(
	ctx context.Context,
	session *middleware.Session,
	refreshToken string,
) error {
	if refreshToken != "" {
		storedToken, err := s.repo.FindByHash(ctx, core.HashToken(refreshToken))
		switch {
		case errors.Is(err, core.ErrNotFound):
		case err != nil:
			return fmt.Errorf("find token: %w", err)
		case storedToken.UserID != session.UserID:
			return fmt.Errorf("logout: %w", core.ErrForbidden)
		default:
			if err := s.repo.RevokeByID(ctx, storedToken.ID); err != nil &&
				!errors.Is(err, core.ErrNotFound) {
				return fmt.Errorf("revoke token: %w", err)
			}
		}
	}

	if err := s.blacklist.Revoke(ctx, session.TokenID, session.ExpiresAt); err != nil {
		return fmt.Errorf("revoke access token: %w", err)
	}

	return nil
}

func (s *Service) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repo.RevokeAllForUser(ctx, userID); err != nil {
		return fmt.Errorf("revoke all tokens: %w", err)
	}

	if err := s.userProvider.IncrementTokenVersion(ctx, userID); err != nil {
		return fmt.Errorf("increment token version: %w", err)
	}

	return nil
}

func (s *Service) ChangePassword(
	ctx context.Context,
	userID, currentPassword, newPassword string,
) error {
	user, err := s.userProvider.GetByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}

	valid, err := s.passwords.Verify(currentPassword, user.PasswordHash)
	if err != nil {
		return fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return ErrInvalidCredentials
	}

	newHash, err := s.passwords.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.userProvider.UpdatePassword(ctx, userID, newHash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if err := s.LogoutAll(ctx, userID); err != nil {
		return fmt.Errorf("logout all: %w", err)
	}

	return nil
}

func (s *Service) GetCurrentUser(
	ctx context.Context,
	userID string,
) (*UserProfile, error) {
	profile, err := s.userProvider.GetAuthProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return profile, nil
}

// CleanupExpiredTokens deletes refresh tokens past their expiry plus a
// grace period.
func (s *Service) CleanupExpiredTokens(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, expiredTokenGrace)
}

func (s *Service) revokeFamily(ctx context.Context, token *RefreshToken) {
	s.logger.WarnContext(ctx, "refresh token reuse detected, revoking family",
		"user_id", token.UserID,
		"family_id", token.FamilyID,
	)
	if err := s.repo.RevokeByFamilyID(ctx, token.FamilyID); err != nil {
		s.logger.ErrorContext(ctx, "revoke token family failed",
			"family_id", token.FamilyID,
			"error", err,
		)
	}
}

// issueTokens mints an access token and a refresh token. With usedTokenID
// set the new refresh token replaces it atomically.
func (s *Service) issueTokens(
	ctx context.Context,
	user *UserInfo,
	userAgent, ipAddress, familyID, usedTokenID string,
) (*TokenResponse, error) {
	access, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID:       user.ID,
		Username:     user.Username,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	refreshData, err := s.jwt.CreateRefreshToken(familyID)
	if err != nil {
		return nil, fmt.Errorf("create refresh token: %w", err)
	}

	next := &RefreshToken{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		TokenHash: refreshData.Hash,
		FamilyID:  refreshData.FamilyID,
		ExpiresAt: refreshData.ExpiresAt,
		UserAgent: userAgent,
		IPAddress: ipAddress,
	}

	if usedTokenID == "" {
		err = s.repo.Create(ctx, next)
	} else {
		err = s.repo.Rotate(ctx, usedTokenID, next)
	}
	if err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  access.Token,
		RefreshToken: refreshData.Token,
		TokenType:    "Bearer",
		ExpiresIn:    int(s.jwt.AccessTokenTTL() / time.Second),
		ExpiresAt:    access.ExpiresAt,
	}, nil
}
