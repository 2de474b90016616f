package httpserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/socialmesh/platform/services/identity/internal/models"
	"github.com/socialmesh/platform/services/identity/internal/repo"
	"github.com/socialmesh/platform/services/identity/internal/service"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, gdb.AutoMigrate(&models.User{}, &models.RefreshToken{}))

	svc := &service.AuthService{
		Repo:      repo.GormRepo{DB: gdb},
		JWTSecret: []byte("test-jwt-secret"),
	}

	e := echo.New()
	Register(e, &Deps{AuthHandler: NewAuthHTTP(svc)})
	return e
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeTokens(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestRegisterHandler(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeTokens(t, rec)
	assert.Equal(t, true, body["success"])
	assert.NotEmpty(t, body["accessToken"])
	assert.NotEmpty(t, body["refreshToken"])

	t.Run("duplicate", func(t *testing.T) {
		rec := doJSON(e, http.MethodPost, "/api/auth/register",
			`{"username":"alice","email":"alice@example.com","password":"password123"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"success":false,"message":"user already exists"}`, rec.Body.String())
	})
}

func TestRegisterHandler_Validation(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{name: "short username", body: `{"username":"ab","email":"a@example.com","password":"password123"}`},
		{name: "bad email", body: `{"username":"alice","email":"not-an-email","password":"password123"}`},
		{name: "short password", body: `{"username":"alice","email":"a@example.com","password":"12345"}`},
		{name: "not json", body: `username=alice`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/auth/register", tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestLoginHandler(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeTokens(t, rec)
	assert.NotEmpty(t, body["userId"])

	t.Run("bad credentials share one message", func(t *testing.T) {
		wrongPw := doJSON(e, http.MethodPost, "/api/auth/login",
			`{"email":"alice@example.com","password":"wrongpassword"}`)
		unknown := doJSON(e, http.MethodPost, "/api/auth/login",
			`{"email":"nobody@example.com","password":"password123"}`)

		require.Equal(t, http.StatusBadRequest, wrongPw.Code)
		require.Equal(t, http.StatusBadRequest, unknown.Code)
		assert.Equal(t, wrongPw.Body.String(), unknown.Body.String())
	})
}

func TestRefreshHandler_SingleUse(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	first := decodeTokens(t, rec)["refreshToken"].(string)

	rec = doJSON(e, http.MethodPost, "/api/auth/refreshToken", `{"refreshToken":"`+first+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	second := decodeTokens(t, rec)["refreshToken"].(string)
	assert.NotEqual(t, first, second)

	rec = doJSON(e, http.MethodPost, "/api/auth/refreshToken", `{"refreshToken":"`+first+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"invalid or expired refresh token"}`, rec.Body.String())
}

func TestLogoutHandler_Idempotent(t *testing.T) {
	t.Parallel()

	e := newTestServer(t)
	rec := doJSON(e, http.MethodPost, "/api/auth/register",
		`{"username":"alice","email":"alice@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	refresh := decodeTokens(t, rec)["refreshToken"].(string)

	rec = doJSON(e, http.MethodPost, "/api/auth/logout", `{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/refreshToken", `{"refreshToken":"`+refresh+`"}`)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/auth/logout", `{"refreshToken":"`+refresh+`"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}
