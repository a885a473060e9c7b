package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/jwtutil"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authEnv(t *testing.T, resolvedTenant string) (*echo.Echo, *jwtutil.JWTUtil) {
	t.Helper()
	util := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	e := echo.New()
	if resolvedTenant != "" {
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				tenantctx.SetTenant(c, &model.Tenant{Identifier: resolvedTenant})
				return next(c)
			}
		})
	}
	e.GET("/secure", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, JWTAuthMiddleware(util))

	return e, util
}

func authRequest(token string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/secure", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestJWTAuthMiddleware(t *testing.T) {
	t.Run("missing token is 401", func(t *testing.T) {
		e, _ := authEnv(t, "")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, authRequest(""))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header is 401", func(t *testing.T) {
		e, _ := authEnv(t, "")
		req := httptest.NewRequest(http.MethodGet, "/secure", nil)
		req.Header.Set("Authorization", "Token abc")
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token for the resolved tenant passes", func(t *testing.T) {
		e, util := authEnv(t, "acme")
		token, err := util.GenerateToken("jane@example.com", 1, "acme")
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, authRequest(token))
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("token for another tenant is 403", func(t *testing.T) {
		e, util := authEnv(t, "acme")
		token, err := util.GenerateToken("jane@example.com", 1, "globex")
		require.NoError(t, err)

		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, authRequest(token))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
