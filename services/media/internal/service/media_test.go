package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/services/media/internal/models"
	"github.com/socialmesh/platform/services/media/internal/repo"
)

// fakeStore records puts and deletes in memory.
type fakeStore struct {
	objects   map[string]string
	putErr    error
	deleteErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]string{}}
}

func (f *fakeStore) Put(ctx context.Context, key, contentType string, body io.Reader) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	f.objects[key] = string(data)
	return "https://bucket.test/" + key, nil
}

func (f *fakeStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func newTestMediaService(t *testing.T) (*MediaService, *fakeStore) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&models.Media{}))

	store := newFakeStore()
	return &MediaService{
		Repo:  &repo.GormRepo{DB: gdb},
		Store: store,
	}, store
}

func TestUpload(t *testing.T) {
	t.Parallel()

	svc, store := newTestMediaService(t)
	ctx := context.Background()
	userID := uuid.New()

	media, err := svc.Upload(ctx, userID, "cat.png", "image/png", strings.NewReader("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, userID, media.UserID)
	assert.Equal(t, "cat.png", media.OriginalName)
	assert.Equal(t, "image/png", media.MimeType)
	assert.Equal(t, "https://bucket.test/"+media.StorageKey, media.URL)
	assert.Equal(t, "png-bytes", store.objects[media.StorageKey])

	listed, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, media.ID, listed[0].ID)
}

func TestUpload_StoreFailureLeavesNoRow(t *testing.T) {
	t.Parallel()

	svc, store := newTestMediaService(t)
	store.putErr = errors.New("bucket unreachable")

	_, err := svc.Upload(context.Background(), uuid.New(), "cat.png", "image/png", strings.NewReader("x"))
	require.Error(t, err)

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.Media{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestListForUser_ScopedToOwner(t *testing.T) {
	t.Parallel()

	svc, _ := newTestMediaService(t)
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()

	_, err := svc.Upload(ctx, alice, "a.png", "image/png", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = svc.Upload(ctx, bob, "b.png", "image/png", strings.NewReader("b"))
	require.NoError(t, err)

	listed, err := svc.ListForUser(ctx, alice)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, "a.png", listed[0].OriginalName)
}

func TestRemoveByIDs(t *testing.T) {
	t.Parallel()

	svc, store := newTestMediaService(t)
	ctx := context.Background()
	userID := uuid.New()

	kept, err := svc.Upload(ctx, userID, "keep.png", "image/png", strings.NewReader("k"))
	require.NoError(t, err)
	doomed, err := svc.Upload(ctx, userID, "remove.png", "image/png", strings.NewReader("r"))
	require.NoError(t, err)

	require.NoError(t, svc.RemoveByIDs(ctx, []string{doomed.ID.String()}))

	assert.NotContains(t, store.objects, doomed.StorageKey)
	assert.Contains(t, store.objects, kept.StorageKey)

	listed, err := svc.ListForUser(ctx, userID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, kept.ID, listed[0].ID)
}

func TestRemoveByIDs_RowsGoEvenWhenObjectDeleteFails(t *testing.T) {
	t.Parallel()

	svc, store := newTestMediaService(t)
	ctx := context.Background()

	media, err := svc.Upload(ctx, uuid.New(), "x.png", "image/png", strings.NewReader("x"))
	require.NoError(t, err)

	store.deleteErr = errors.New("bucket unreachable")
	require.NoError(t, svc.RemoveByIDs(ctx, []string{media.ID.String()}))

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.Media{}).Count(&count).Error)
	assert.Zero(t, count)

	t.Run("empty id list is a noop", func(t *testing.T) {
		assert.NoError(t, svc.RemoveByIDs(ctx, nil))
	})
}
