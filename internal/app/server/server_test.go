package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workforce/internal/platform/config"
	"workforce/internal/platform/storage"
)

func testApp(t *testing.T) *App {
	t.Helper()
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	cfg := config.Config{
		JWTSecret:            "test-secret",
		TokenTTL:             time.Hour,
		MaxBodyBytes:         4096,
		RateLimitPerMinute:   100,
		StrictRateRatio:      0.1,
		CORSOrigins:          []string{"https://app.example.com"},
		MetricsEnabled:       true,
		ReadinessPingTimeout: time.Second,
		PayslipLinkTTL:       time.Minute,
	}
	app, err := New(cfg, nil, files)
	require.NoError(t, err)
	return app
}

func do(app *App, method, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader("{}"))
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, req)
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	app := testApp(t)

	rec := do(app, http.MethodGet, "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = do(app, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	app.ready = func(context.Context) error { return nil }
	rec = do(app, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)

	app.ready = func(context.Context) error { return errors.New("down") }
	rec = do(app, http.MethodGet, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	app := testApp(t)
	for _, path := range []string{
		"/api/v1/profiles",
		"/api/v1/working-hours",
		"/api/v1/rosters",
		"/api/v1/payroll",
		"/api/v1/bank-accounts",
		"/api/v1/reports/dashboard/employee",
		"/api/v1/notifications",
		"/api/v1/audit/events",
	} {
		rec := do(app, http.MethodGet, path)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := do(app, http.MethodGet, "/api/v1/profiles", "Authorization", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAPIMiddlewareStack(t *testing.T) {
	app := testApp(t)

	rec := do(app, http.MethodOptions, "/api/v1/auth/login",
		"Origin", "https://app.example.com",
		"Access-Control-Request-Method", "POST")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://app.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	rec = do(app, http.MethodGet, "/api/v1/nowhere")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "not_found")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = do(app, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestStrictLimiterOnLogin(t *testing.T) {
	app := testApp(t)
	limited := false
	// 100 per minute at a 0.1 ratio leaves ten login attempts per client.
	// A rotating X-Forwarded-For from an untrusted peer shares one bucket.
	for i := 0; i < 11; i++ {
		rec := do(app, http.MethodPost, "/api/v1/auth/login", "X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		if rec.Code == http.StatusTooManyRequests {
			limited = true
			assert.Equal(t, 10, i)
			break
		}
	}
	assert.True(t, limited)
}

func TestNewRejectsBadTrustedProxies(t *testing.T) {
	files, err := storage.NewLocal(t.TempDir())
	require.NoError(t, err)
	_, err = New(config.Config{JWTSecret: "x", TokenTTL: time.Hour, TrustedProxies: []string{"not-an-ip"}}, nil, files)
	assert.ErrorContains(t, err, "TRUSTED_PROXIES")
}
