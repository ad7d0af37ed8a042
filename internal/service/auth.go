package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mkovalev/accounts-api/internal/events"
	"github.com/mkovalev/accounts-api/internal/models"
	"github.com/mkovalev/accounts-api/internal/repo"
	"github.com/mkovalev/accounts-api/internal/search"
	"github.com/mkovalev/accounts-api/internal/tokens"
	"github.com/mkovalev/accounts-api/pkg/hash"
	"github.com/mkovalev/accounts-api/pkg/logging"
)

type AuthService struct {
	Repo       *repo.GormRepo
	Codec      *tokens.Codec
	BcryptCost int
	Producer   *events.Producer
	Search     *search.Client
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

type AuthResult struct {
	User *models.User
	TokenPair
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	pwHash, err := hash.Password(password, s.BcryptCost)
	if err != nil {
		l.Error("register_failed", "reason", "cannot hash password", "error", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleUser,
		IsActive:     true,
	}

	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("register_failed", "reason", "duplicate email")
			return nil, ErrDuplicateEmail
		}
		l.Error("register_failed", "error", err)
		return nil, err
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("register_failed", "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "user_registered",
		"user_id": user.ID,
		"email":   user.Email,
	})
	if err := s.Search.IndexUser(ctx, user); err != nil {
		l.Warn("search_index_failed", "user_id", user.ID, "error", err)
	}

	l.Info("user_registered", "user_id", user.ID)
	return &AuthResult{User: user, TokenPair: *pair}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed", "reason", "user not found")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, err
	}

	// Inactive accounts get the same answer as a bad password so the
	// response cannot be used to probe account state.
	if !user.IsActive {
		l.Warn("login_failed", "reason", "account inactive", "user_id", user.ID, "error", ErrAccountInactive)
		return nil, ErrInvalidCredentials
	}

	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	pair, err := s.issuePair(ctx, user)
	if err != nil {
		l.Error("login_failed", "reason", "cannot issue tokens", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "user_logged_in",
		"user_id": user.ID,
		"email":   user.Email,
	})

	l.Info("login_successful", "user_id", user.ID)
	return &AuthResult{User: user, TokenPair: *pair}, nil
}

// Refresh exchanges a refresh token for a new pair. The old token is consumed:
// signature check first, then ledger lookup, lazy expiry, user lookup, then a
// transactional delete-old + insert-new. Two concurrent refreshes with the
// same token race on the delete and at most one wins.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Codec.VerifyRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_failed", "reason", "bad signature or expired", "error", err)
		return nil, ErrInvalidToken
	}

	record, err := s.Repo.FindRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "reason", "token not in ledger", "user_id", claims.UserID)
			return nil, ErrInvalidToken
		}
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	// expires_at == now is already expired.
	if !record.ExpiresAt.After(time.Now()) {
		if err := s.Repo.DeleteRefreshTokenByID(ctx, record.ID); err != nil {
			l.Error("refresh_failed", "reason", "cannot drop expired record", "error", err)
			return nil, err
		}
		l.Warn("refresh_failed", "reason", "ledger record expired", "user_id", claims.UserID)
		return nil, ErrTokenExpired
	}

	user, err := s.Repo.FindUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_failed", "reason", "user deleted", "user_id", claims.UserID)
			return nil, ErrUserNotFound
		}
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	accessToken, accessExp, err := s.Codec.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	newRefresh, refreshExp, err := s.Codec.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	if err := s.Repo.RotateRefreshToken(ctx, record.ID, user.ID, newRefresh, refreshExp); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// Lost the race against a concurrent refresh.
			l.Warn("refresh_failed", "reason", "token already rotated", "user_id", user.ID)
			return nil, ErrInvalidToken
		}
		l.Error("refresh_failed", "error", err)
		return nil, err
	}

	s.publish(ctx, user.ID, map[string]any{
		"type":    "token_refreshed",
		"user_id": user.ID,
	})

	l.Info("token_refreshed", "user_id", user.ID)
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: newRefresh,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Logout revokes a refresh token. Unknown, expired or already revoked tokens
// are treated as success.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	if err := s.Repo.DeleteRefreshToken(ctx, refreshToken); err != nil {
		l.Error("logout_failed", "error", err)
		return err
	}

	if claims, err := s.Codec.VerifyRefresh(refreshToken); err == nil {
		s.publish(ctx, claims.UserID, map[string]any{
			"type":    "user_logged_out",
			"user_id": claims.UserID,
		})
	}

	l.Info("logout_successful")
	return nil
}

func (s *AuthService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) issuePair(ctx context.Context, user *models.User) (*TokenPair, error) {
	accessToken, accessExp, err := s.Codec.IssueAccess(user)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, refreshExp, err := s.Codec.IssueRefresh(user)
	if err != nil {
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}
	if err := s.Repo.StoreRefreshToken(ctx, user.ID, refreshToken, refreshExp); err != nil {
		return nil, fmt.Errorf("store refresh token: %w", err)
	}
	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// publish sends an auth event, best effort. Delivery failures are logged and
// never fail the flow that triggered them.
func (s *AuthService) publish(ctx context.Context, userID uint, event map[string]any) {
	if err := s.Producer.Publish(ctx, fmt.Sprint(userID), event); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "type", event["type"], "error", err)
	}
}
