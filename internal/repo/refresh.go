package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/velsland/portfolio-api/internal/apperr"
	"github.com/velsland/portfolio-api/internal/models"
)

func (r *GormRepo) CreateRefresh(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func (r *GormRepo) FindRefresh(ctx context.Context, tokenHash string) (*models.RefreshToken, error) {
	var token models.RefreshToken
	if err := r.DB.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("refresh token unknown: %w", apperr.ErrAuthentication)
		}
		return nil, err
	}
	return &token, nil
}

// RevokeRefresh marks the token revoked. Unknown or already-revoked tokens
// are not an error; the end state is the same.
func (r *GormRepo) RevokeRefresh(ctx context.Context, tokenHash string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("token_hash = ?", tokenHash).
		Update("revoked", true).Error
}

// RotateRefresh invalidates the presented token and inserts its replacement
// in a single transaction. The conditional update is the rotation decision:
// when two requests race on the same stale value, exactly one sees a row
// flip and the rest fail authentication. Returns the owning user id.
func (r *GormRepo) RotateRefresh(ctx context.Context, oldHash string, replacement *models.RefreshToken) (string, error) {
	var userID string
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.RefreshToken{}).
			Where("token_hash = ? AND revoked = ? AND expires_at > ?", oldHash, false, time.Now().Unix()).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("refresh token expired, revoked or unknown: %w", apperr.ErrAuthentication)
		}

		var old models.RefreshToken
		if err := tx.Where("token_hash = ?", oldHash).First(&old).Error; err != nil {
			return err
		}
		userID = old.UserID

		replacement.UserID = old.UserID
		return tx.Create(replacement).Error
	})
	if err != nil {
		return "", err
	}
	return userID, nil
}
