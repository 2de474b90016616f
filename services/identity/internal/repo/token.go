package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/pkg/tokens"
	"github.com/socialmesh/platform/services/identity/internal/models"
)

// AddRefreshToken persists the digest of value for userID with the given
// expiry. Issuance must not return a refresh value to the caller before this
// row exists.
func (r *GormRepo) AddRefreshToken(ctx context.Context, userID uuid.UUID, value string, expiresAt time.Time) error {
	row := models.RefreshToken{
		TokenHash: tokens.Digest(value),
		UserID:    userID,
		ExpiresAt: expiresAt,
	}
	return r.DB.WithContext(ctx).Create(&row).Error
}

// ConsumeRefreshToken invalidates the live row for value and returns its
// owning user id. The conditional delete is the decider: of any number of
// concurrent calls with the same value, exactly the one whose delete affects
// a row wins; the rest get ErrTokenInvalid. Expired rows never match the
// delete condition, so a stale value fails here without needing a sweeper.
func ConsumeRefreshToken(tx *gorm.DB, value string, now time.Time) (uuid.UUID, error) {
	digest := tokens.Digest(value)

	var row models.RefreshToken
	if err := tx.Where("token_hash = ?", digest).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrTokenInvalid
		}
		return uuid.Nil, err
	}

	res := tx.Where("token_hash = ? AND expires_at > ?", digest, now).
		Delete(&models.RefreshToken{})
	if res.Error != nil {
		return uuid.Nil, res.Error
	}
	if res.RowsAffected == 0 {
		return uuid.Nil, ErrTokenInvalid
	}
	return row.UserID, nil
}

// DeleteRefreshToken removes the row for value; deleting an absent token is
// still success (logout is idempotent).
func (r *GormRepo) DeleteRefreshToken(ctx context.Context, value string) error {
	return r.DB.WithContext(ctx).
		Where("token_hash = ?", tokens.Digest(value)).
		Delete(&models.RefreshToken{}).Error
}
