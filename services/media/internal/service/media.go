package service

import (
	"context"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/services/media/internal/models"
	"github.com/socialmesh/platform/services/media/internal/repo"
)

// ObjectStore is the object-storage surface the service needs; satisfied by
// storage.S3Store.
type ObjectStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
}

type MediaService struct {
	Repo  *repo.GormRepo
	Store ObjectStore
}

// Upload stores the object first and records the row after, so a failure can
// only leave an unreferenced object behind, never a row without its object.
func (s *MediaService) Upload(ctx context.Context, userID uuid.UUID, filename, mimeType string, body io.Reader) (*models.Media, error) {
	l := logging.FromContext(ctx).With("svc", "media.upload")

	id := uuid.New()
	key := fmt.Sprintf("uploads/%s/%s", userID, id)

	url, err := s.Store.Put(ctx, key, mimeType, body)
	if err != nil {
		l.Error("upload_failed", "status", 500, "error", err)
		return nil, err
	}

	media := &models.Media{
		ID:           id,
		UserID:       userID,
		OriginalName: filename,
		MimeType:     mimeType,
		StorageKey:   key,
		URL:          url,
	}
	if err := s.Repo.CreateMedia(ctx, media); err != nil {
		l.Error("upload_failed", "status", 500, "reason", "cannot persist media record", "error", err)
		return nil, err
	}

	l.Info("media_uploaded", "media_id", id.String())
	return media, nil
}

func (s *MediaService) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.Media, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// RemoveByIDs deletes media rows and their stored objects; used by the
// post.deleted consumer to clean up media orphaned by a post deletion.
func (s *MediaService) RemoveByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	l := logging.FromContext(ctx).With("svc", "media.remove")

	media, err := s.Repo.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	for _, m := range media {
		if err := s.Store.Delete(ctx, m.StorageKey); err != nil {
			// Rows are removed regardless; an undeleted object is recoverable
			// garbage, a row pointing at a deleted object is not.
			l.Error("object delete failed", "media_id", m.ID.String(), "error", err)
		}
	}
	if err := s.Repo.DeleteByIDs(ctx, ids); err != nil {
		return err
	}

	l.Info("media_removed", "count", len(media))
	return nil
}
