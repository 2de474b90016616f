package httpserver

import (
	"encoding/json"
	"net"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strings"
	"time"

	echo "github.com/labstack/echo/v4"

	"github.com/socialmesh/platform/gateway/internal/middleware"
	"github.com/socialmesh/platform/pkg/logging"
)

// HeaderUserID carries the verified identity from the gateway to downstream
// services. Everything behind the gateway treats it as authoritative, which
// only holds while downstream services are unreachable except through the
// gateway.
const HeaderUserID = "x-user-id"

// newProxy forwards to target, rewriting the public prefix to the internal
// one. Proxied calls are single-attempt: the operations behind the gateway
// are not guaranteed idempotent, so a blind retry could duplicate writes.
// A client disconnect cancels the request context and aborts the downstream
// call with it.
func newProxy(target, publicPrefix, internalPrefix string) (echo.HandlerFunc, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, err
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:          200,
		IdleConnTimeout:       90 * time.Second,
		ResponseHeaderTimeout: 15 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	p := httputil.NewSingleHostReverseProxy(u)
	p.Transport = transport
	p.FlushInterval = 100 * time.Millisecond

	origDirector := p.Director
	p.Director = func(req *http.Request) {
		origDirector(req)

		if strings.HasPrefix(req.URL.Path, publicPrefix) {
			req.URL.Path = internalPrefix + strings.TrimPrefix(req.URL.Path, publicPrefix)
			if rp := req.URL.RawPath; rp != "" && strings.HasPrefix(rp, publicPrefix) {
				req.URL.RawPath = internalPrefix + strings.TrimPrefix(rp, publicPrefix)
			}
		}

		// Multipart bodies (media upload) pass through untouched; everything
		// else is JSON on the internal side.
		ct := req.Header.Get(echo.HeaderContentType)
		if req.Body != nil && ct == "" {
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		}
	}

	p.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		logging.FromContext(r.Context()).Error("proxy error", "target", target, "error", err)
		w.Header().Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		w.WriteHeader(http.StatusBadGateway)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": false,
			"message": "upstream service unavailable",
		})
	}

	return func(c echo.Context) error {
		req := c.Request()

		// The trust header is gateway-owned: whatever the client sent goes,
		// and the verified identity (when this route is guarded) goes in.
		req.Header.Del(HeaderUserID)
		if userID, ok := c.Get(middleware.CtxUserID).(string); ok && userID != "" {
			req.Header.Set(HeaderUserID, userID)
		}

		p.ServeHTTP(c.Response(), req)
		return nil
	}, nil
}
