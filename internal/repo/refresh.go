package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mkovalev/accounts-api/internal/models"
)

func (r *GormRepo) StoreRefreshToken(ctx context.Context, userID uint, token string, expiresAt time.Time) error {
	record := models.RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
	}
	return wrap(r.DB.WithContext(ctx).Create(&record).Error)
}

func (r *GormRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	var record models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token = ?", token).First(&record).Error; err != nil {
		return nil, wrap(err)
	}
	return &record, nil
}

// DeleteRefreshToken removes the record for token. Deleting a token that is
// already gone is not an error, which keeps logout idempotent.
func (r *GormRepo) DeleteRefreshToken(ctx context.Context, token string) error {
	return wrap(r.DB.WithContext(ctx).Where("token = ?", token).Delete(&models.RefreshToken{}).Error)
}

func (r *GormRepo) DeleteRefreshTokenByID(ctx context.Context, id uint) error {
	return wrap(r.DB.WithContext(ctx).Delete(&models.RefreshToken{}, id).Error)
}

// RotateRefreshToken atomically replaces the old record with a new one.
// Rotation is always delete-old + insert-new; if another request already
// consumed the old token the delete affects zero rows and rotation fails with
// ErrNotFound, so at most one concurrent refresh can win.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldID uint, userID uint, newToken string, expiresAt time.Time) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Delete(&models.RefreshToken{}, oldID)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrNotFound
		}

		record := models.RefreshToken{
			UserID:    userID,
			Token:     newToken,
			ExpiresAt: expiresAt,
		}
		return tx.Create(&record).Error
	})
	return wrap(err)
}
