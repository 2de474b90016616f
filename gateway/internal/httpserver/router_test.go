package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/socialmesh/platform/pkg/tokens"
)

var testSecret = []byte("gateway-test-secret")

// recordingUpstream captures what the proxy actually delivered.
type recordingUpstream struct {
	path   string
	userID string
}

func newTestGateway(t *testing.T) (*echo.Echo, *recordingUpstream) {
	t.Helper()

	seen := &recordingUpstream{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen.path = r.URL.Path
		seen.userID = r.Header.Get(HeaderUserID)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(upstream.Close)

	e := echo.New()
	require.NoError(t, Register(e, &Deps{
		IdentityURL: upstream.URL,
		PostURL:     upstream.URL,
		MediaURL:    upstream.URL,
		JWTSecret:   testSecret,
	}))
	return e, seen
}

func bearerFor(t *testing.T, userID string) string {
	t.Helper()
	token, _, err := tokens.NewAccessToken(testSecret, userID, "alice", time.Now().UTC())
	require.NoError(t, err)
	return "Bearer " + token
}

func TestGateway_RewritesPathAndInjectsIdentity(t *testing.T) {
	t.Parallel()

	e, seen := newTestGateway(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/posts/allposts?page=2", nil)
	req.Header.Set(echo.HeaderAuthorization, bearerFor(t, "user-42"))
	// a spoofed trust header must never survive the hop
	req.Header.Set(HeaderUserID, "someone-else")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/posts/allposts", seen.path)
	assert.Equal(t, "user-42", seen.userID)
}

func TestGateway_AuthRoutesArePublic(t *testing.T) {
	t.Parallel()

	e, seen := newTestGateway(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	req.Header.Set(HeaderUserID, "spoofed")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/auth/login", seen.path)
	// no verified identity on public routes, spoofed or not
	assert.Empty(t, seen.userID)
}

func TestGateway_ProtectedRoutesRequireToken(t *testing.T) {
	t.Parallel()

	e, _ := newTestGateway(t)

	for _, path := range []string{"/v1/posts/allposts", "/v1/media"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}
}

func TestGateway_UpstreamDown(t *testing.T) {
	t.Parallel()

	e := echo.New()
	// a loopback port with nothing listening
	require.NoError(t, Register(e, &Deps{
		IdentityURL: "http://127.0.0.1:1",
		PostURL:     "http://127.0.0.1:1",
		MediaURL:    "http://127.0.0.1:1",
		JWTSecret:   testSecret,
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/posts/allposts", nil)
	req.Header.Set(echo.HeaderAuthorization, bearerFor(t, "user-42"))
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"upstream service unavailable"}`, rec.Body.String())
}

func TestGateway_HealthBypassesAuth(t *testing.T) {
	t.Parallel()

	e, _ := newTestGateway(t)

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
