package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/socialmesh/platform/pkg/cache"
	"github.com/socialmesh/platform/pkg/events"
	"github.com/socialmesh/platform/pkg/logging"
	"github.com/socialmesh/platform/pkg/pagination"
	"github.com/socialmesh/platform/services/post/internal/models"
	"github.com/socialmesh/platform/services/post/internal/repo"
	"github.com/socialmesh/platform/services/post/internal/search"
	"github.com/socialmesh/platform/services/post/internal/transport"
)

const (
	listTTL   = 5 * time.Minute
	detailTTL = time.Hour

	listPattern = "posts:list:*"
)

var ErrSearchDisabled = errors.New("search is not configured")

func listKey(page, limit int) string {
	return fmt.Sprintf("posts:list:%d:%d", page, limit)
}

func detailKey(id string) string {
	return "posts:detail:" + id
}

// PostService serves reads through the shared cache and fans post mutations
// out to the event bus and the search index. Producer and Search are
// optional; a nil value disables that concern.
type PostService struct {
	Repo     *repo.GormRepo
	Cache    *cache.Cache
	Producer *events.Producer
	Search   *search.Index
}

// ListPosts returns the serialized listing payload for (page, limit). A cache
// hit is returned verbatim without touching the backing store.
func (s *PostService) ListPosts(ctx context.Context, page, limit int) ([]byte, error) {
	l := logging.FromContext(ctx).With("svc", "post.list")

	offset, size := pagination.Calculate(page, limit)
	page = offset/size + 1
	key := listKey(page, size)

	if payload, err := s.Cache.Get(ctx, key); err == nil {
		return payload, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		// The cache is an optimization, not admission control: on a store
		// failure the read falls through to the database.
		l.Error("cache read failed", "key", key, "error", err)
	}

	total, posts, err := s.Repo.GetPosts(ctx, offset, size)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(transport.PostList{
		Success:     true,
		Posts:       posts,
		CurrentPage: page,
		TotalPages:  pagination.TotalPages(total, size),
		TotalPosts:  total,
	})
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Set(ctx, key, payload, listTTL); err != nil {
		l.Error("cache write failed", "key", key, "error", err)
	}
	return payload, nil
}

func (s *PostService) GetPost(ctx context.Context, id uuid.UUID) ([]byte, error) {
	l := logging.FromContext(ctx).With("svc", "post.get")
	key := detailKey(id.String())

	if payload, err := s.Cache.Get(ctx, key); err == nil {
		return payload, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		l.Error("cache read failed", "key", key, "error", err)
	}

	post, err := s.Repo.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(transport.PostDetail{Success: true, Post: *post})
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Set(ctx, key, payload, detailTTL); err != nil {
		l.Error("cache write failed", "key", key, "error", err)
	}
	return payload, nil
}

func (s *PostService) CreatePost(ctx context.Context, userID uuid.UUID, content string, mediaIDs []string) (*models.Post, error) {
	l := logging.FromContext(ctx).With("svc", "post.create")

	post := &models.Post{
		ID:       uuid.New(),
		UserID:   userID,
		Content:  content,
		MediaIDs: mediaIDs,
	}
	if err := s.Repo.CreatePost(ctx, post); err != nil {
		return nil, err
	}

	// Every cached page could now be stale; listings cannot be invalidated
	// by a single key.
	if err := s.Cache.Purge(ctx, listPattern); err != nil {
		l.Error("cache purge failed", "error", err)
	}

	if s.Producer != nil {
		if err := s.Producer.Publish(ctx, post.ID.String(), events.PostEvent{
			Type:   events.TypePostCreated,
			PostID: post.ID.String(),
			UserID: userID.String(),
			At:     time.Now().UTC(),
		}); err != nil {
			l.Error("event publish failed", "error", err)
		}
	}
	if s.Search != nil {
		if err := s.Search.IndexPost(ctx, post); err != nil {
			l.Error("search index failed", "error", err)
		}
	}

	l.Info("post_created", "post_id", post.ID.String())
	return post, nil
}

func (s *PostService) DeletePost(ctx context.Context, id, userID uuid.UUID) error {
	l := logging.FromContext(ctx).With("svc", "post.delete")

	post, err := s.Repo.DeleteOwnedPost(ctx, id, userID)
	if err != nil {
		return err
	}

	if err := s.Cache.Purge(ctx, listPattern); err != nil {
		l.Error("cache purge failed", "error", err)
	}
	if err := s.Cache.Delete(ctx, detailKey(id.String())); err != nil {
		l.Error("cache delete failed", "error", err)
	}

	if s.Producer != nil {
		if err := s.Producer.Publish(ctx, id.String(), events.PostEvent{
			Type:     events.TypePostDeleted,
			PostID:   id.String(),
			UserID:   userID.String(),
			MediaIDs: post.MediaIDs,
			At:       time.Now().UTC(),
		}); err != nil {
			l.Error("event publish failed", "error", err)
		}
	}
	if s.Search != nil {
		if err := s.Search.RemovePost(ctx, id.String()); err != nil {
			l.Error("search remove failed", "error", err)
		}
	}

	l.Info("post_deleted", "post_id", id.String())
	return nil
}

func (s *PostService) SearchPosts(ctx context.Context, query string, page, size int) (int64, []models.Post, error) {
	if s.Search == nil {
		return 0, nil, ErrSearchDisabled
	}
	from, limit := pagination.Calculate(page, size)
	return s.Search.Search(ctx, query, from, limit)
}
