package repo

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/services/post/internal/models"
)

type GormRepo struct {
	DB *gorm.DB
}

func (r *GormRepo) CreatePost(ctx context.Context, post *models.Post) error {
	return r.DB.WithContext(ctx).Create(post).Error
}

func (r *GormRepo) GetPost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *GormRepo) GetPosts(ctx context.Context, offset, limit int) (int64, []models.Post, error) {
	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Post{}).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	posts := make([]models.Post, 0, limit)
	if err := r.DB.WithContext(ctx).Model(&models.Post{}).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&posts).Error; err != nil {
		return 0, nil, err
	}

	return total, posts, nil
}

// DeleteOwnedPost removes the post only when it belongs to userID and returns
// the deleted row so callers can propagate its media ids. A post owned by
// someone else is indistinguishable from an absent one.
func (r *GormRepo) DeleteOwnedPost(ctx context.Context, id, userID uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&post).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, "id = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}
