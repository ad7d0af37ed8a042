package service

import (
	"context"
	"errors"

	"github.com/mkovalev/accounts-api/internal/models"
	"github.com/mkovalev/accounts-api/internal/repo"
	"github.com/mkovalev/accounts-api/pkg/hash"
	"github.com/mkovalev/accounts-api/pkg/logging"
)

type UserUpdate struct {
	Name     *string
	Password *string
}

func (s *AuthService) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *AuthService) UpdateUser(ctx context.Context, id uint, upd UserUpdate) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.update", "user_id", id)

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Name != nil {
		user.Name = *upd.Name
	}
	if upd.Password != nil {
		pwHash, err := hash.Password(*upd.Password, s.BcryptCost)
		if err != nil {
			l.Error("update_failed", "reason", "cannot hash password", "error", err)
			return nil, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("update_failed", "error", err)
		return nil, err
	}

	if err := s.Search.IndexUser(ctx, user); err != nil {
		l.Warn("search_index_failed", "error", err)
	}

	l.Info("user_updated")
	return user, nil
}

// SetUserActive toggles the active flag. Deactivated users keep their ledger
// records but fail login with the generic credentials error.
func (s *AuthService) SetUserActive(ctx context.Context, id uint, active bool) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.set_active", "user_id", id)

	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	user.IsActive = active
	if err := s.Repo.SaveUser(ctx, user); err != nil {
		l.Error("set_active_failed", "error", err)
		return nil, err
	}

	l.Info("user_active_changed", "active", active)
	return user, nil
}

func (s *AuthService) DeleteUser(ctx context.Context, id uint) error {
	l := logging.FromContext(ctx).With("svc", "user.delete", "user_id", id)

	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrUserNotFound
		}
		l.Error("delete_failed", "error", err)
		return err
	}

	if err := s.Search.DeleteUser(ctx, id); err != nil {
		l.Warn("search_delete_failed", "error", err)
	}

	l.Info("user_deleted")
	return nil
}
