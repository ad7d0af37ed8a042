package repo

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mkovalev/accounts-api/internal/models"
)

func newTestRepo(t *testing.T) *GormRepo {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	return &GormRepo{DB: db}
}

func countTokens(t *testing.T, r *GormRepo) int64 {
	t.Helper()

	var count int64
	require.NoError(t, r.DB.Model(&models.RefreshToken{}).Count(&count).Error)
	return count
}
