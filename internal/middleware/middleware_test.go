package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekarslan/event-seat-reservation/internal/utils"
)

func doRequest(e *echo.Echo, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestJWTAuth(t *testing.T) {
	const secret = "test-secret"
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"role": c.Get("role")})
	}, JWTAuth(secret))

	t.Run("missing token", func(t *testing.T) {
		rec := doRequest(e, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		rec := doRequest(e, "not-a-jwt")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		at, err := utils.NewAccessToken("other-secret", 1, "USER", 5)
		require.NoError(t, err)
		rec := doRequest(e, at.Token)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token passes claims through", func(t *testing.T) {
		at, err := utils.NewAccessToken(secret, 1, "MANAGER", 5)
		require.NoError(t, err)
		rec := doRequest(e, at.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "MANAGER")
	})
}

func TestRequireRole(t *testing.T) {
	const secret = "test-secret"
	e := echo.New()
	e.GET("/protected", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}, JWTAuth(secret), RequireRole("MANAGER", "ADMIN"))

	t.Run("allowed role", func(t *testing.T) {
		at, err := utils.NewAccessToken(secret, 1, "MANAGER", 5)
		require.NoError(t, err)
		rec := doRequest(e, at.Token)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("disallowed role", func(t *testing.T) {
		at, err := utils.NewAccessToken(secret, 1, "USER", 5)
		require.NoError(t, err)
		rec := doRequest(e, at.Token)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
