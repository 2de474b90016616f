package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/pkg/cache"
	"github.com/socialmesh/platform/services/post/internal/models"
	"github.com/socialmesh/platform/services/post/internal/repo"
	"github.com/socialmesh/platform/services/post/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&models.Post{}))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	svc := &service.PostService{
		Repo:  &repo.GormRepo{DB: gdb},
		Cache: cache.New(rdb),
	}

	e := echo.New()
	Register(e, &Deps{PostHandler: NewPostHTTP(svc)})
	return e
}

func do(e *echo.Echo, method, path, userID, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if userID != "" {
		req.Header.Set("x-user-id", userID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestPostRoutes_RequireIdentityHeader(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	tests := []struct {
		name   string
		userID string
	}{
		{name: "missing header", userID: ""},
		{name: "malformed header", userID: "not-a-uuid"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodGet, "/api/posts/allposts", tt.userID, "")
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestCreateAndGetPost(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	userID := uuid.NewString()

	rec := do(e, http.MethodPost, "/api/posts/create-post", userID,
		`{"content":"hello mesh","mediaIds":["m1"]}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	postID, _ := created["postId"].(string)
	require.NotEmpty(t, postID)

	rec = do(e, http.MethodGet, "/api/posts/"+postID, userID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Success bool        `json:"success"`
		Post    models.Post `json:"post"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.True(t, detail.Success)
	assert.Equal(t, "hello mesh", detail.Post.Content)
	assert.Equal(t, userID, detail.Post.UserID.String())
}

func TestCreatePost_Validation(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	userID := uuid.NewString()

	longContent := strings.Repeat("x", 501)
	tests := []struct {
		name string
		body string
	}{
		{name: "empty content", body: `{"content":""}`},
		{name: "content too long", body: `{"content":"` + longContent + `"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := do(e, http.MethodPost, "/api/posts/create-post", userID, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestGetPost_NotFoundAndBadID(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	userID := uuid.NewString()

	rec := do(e, http.MethodGet, "/api/posts/"+uuid.NewString(), userID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodGet, "/api/posts/not-a-uuid", userID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeletePost_OwnerScoped(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	owner := uuid.NewString()

	rec := do(e, http.MethodPost, "/api/posts/create-post", owner, `{"content":"mine"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	var created map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	postID := created["postId"].(string)

	rec = do(e, http.MethodDelete, "/api/posts/"+postID, uuid.NewString(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodDelete, "/api/posts/"+postID, owner, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(e, http.MethodGet, "/api/posts/"+postID, owner, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSearchPosts_UnavailableWithoutIndex(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	userID := uuid.NewString()

	rec := do(e, http.MethodGet, "/api/posts/search?q=hello", userID, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = do(e, http.MethodGet, "/api/posts/search", userID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
