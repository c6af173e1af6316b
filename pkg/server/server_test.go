package server

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hydromix/hydromix/pkg/storage/storagemock"
)

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, &storagemock.MockDatabase{}, nil)
	h := srv.setupHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t, &storagemock.MockDatabase{}, nil)
	h := srv.setupHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "default-src 'none'; frame-ancestors 'none'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))
	assert.Equal(t, "hydromix-test", rec.Header().Get("Server"))
}

func TestAuthMiddleware(t *testing.T) {
	srv := newTestServer(t, &storagemock.MockDatabase{}, nil)
	srv.bypassAuth = false
	srv.oidcVerifier = func(ctx context.Context, raw string) (*oidc.IDToken, error) {
		return nil, fmt.Errorf("bad token")
	}
	h := srv.setupHandler()

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/list/providers", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/list/providers", nil)
		req.Header.Set("Authorization", "Basic abc")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejected token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/list/providers", nil)
		req.Header.Set("Authorization", "Bearer nope")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("healthz needs no auth", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestIsAdmin(t *testing.T) {
	srv := newTestServer(t, &storagemock.MockDatabase{}, nil)
	srv.adminEmails = []string{"a@example.com", "b@example.com"}
	assert.True(t, srv.isAdmin("a@example.com"))
	assert.False(t, srv.isAdmin("c@example.com"))
}

func TestListProviders(t *testing.T) {
	prov := &mockProvider{}
	srv := newTestServer(t, &storagemock.MockDatabase{}, prov)
	h := srv.setupHandler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/api/list/providers", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"providers":[{"name":"test","description":"fixture bundles for handler tests"}]}`, rec.Body.String())
}
