package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenFromRequest(t *testing.T) {
	t.Run("bearer header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer abc123")

		assert.Equal(t, "abc123", TokenFromRequest(req))
	})

	t.Run("bearer is case insensitive", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "bearer abc123")

		assert.Equal(t, "abc123", TokenFromRequest(req))
	})

	t.Run("session cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "cookie-token"})

		assert.Equal(t, "cookie-token", TokenFromRequest(req))
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer header-token")
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: "cookie-token"})

		assert.Equal(t, "header-token", TokenFromRequest(req))
	})

	t.Run("no credential", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)

		assert.Equal(t, "", TokenFromRequest(req))
	})

	t.Run("non-bearer scheme ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")

		assert.Equal(t, "", TokenFromRequest(req))
	})

	t.Run("bare bearer ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer")

		assert.Equal(t, "", TokenFromRequest(req))
	})

	t.Run("empty cookie value ignored", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: TokenCookie, Value: ""})

		assert.Equal(t, "", TokenFromRequest(req))
	})
}
