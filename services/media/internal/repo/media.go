package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/services/media/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) CreateMedia(ctx context.Context, m *models.Media) error {
	return r.DB.WithContext(ctx).Create(m).Error
}

func (r *GormRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Media, error) {
	var media []models.Media
	if err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *GormRepo) FindByIDs(ctx context.Context, ids []string) ([]models.Media, error) {
	var media []models.Media
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&media).Error; err != nil {
		return nil, err
	}
	return media, nil
}

func (r *GormRepo) DeleteByIDs(ctx context.Context, ids []string) error {
	return r.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&models.Media{}).Error
}
