package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/storefront/internal/api/middleware"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession(t *testing.T) {
	session := middleware.NewSession("cart_session", 24*time.Hour, false)

	var seen string

	handler := session.Handle(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := middleware.SessionFromContext(r.Context())
		require.True(t, ok)

		seen = id
		w.WriteHeader(http.StatusNoContent)
	}))

	t.Run("Success - Header Wins", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set(middleware.SessionHeader, id)
		req.AddCookie(&http.Cookie{Name: "cart_session", Value: uuid.NewString()})
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, id, seen)
		assert.Equal(t, id, rr.Header().Get(middleware.SessionHeader))
		assert.Empty(t, rr.Result().Cookies(), "known sessions are not re-issued")
	})

	t.Run("Success - Cookie", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.AddCookie(&http.Cookie{Name: "cart_session", Value: id})
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.Equal(t, id, seen)
	})

	t.Run("Success - Minted When Missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		_, err := uuid.Parse(seen)
		require.NoError(t, err)

		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "cart_session", cookies[0].Name)
		assert.Equal(t, seen, cookies[0].Value)
		assert.True(t, cookies[0].HttpOnly)
	})

	t.Run("Success - Garbage Session Replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
		req.Header.Set(middleware.SessionHeader, "../../etc/passwd")
		rr := httptest.NewRecorder()

		handler.ServeHTTP(rr, req)

		assert.NotEqual(t, "../../etc/passwd", seen)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err)
	})
}
