package middleware

import (
	"net/http"
	"strings"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/jwtutil"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// JWTAuthMiddleware validates the Bearer token on dashboard endpoints and
// rejects tokens issued for a different tenant than the one resolved from
// the request header.
func JWTAuthMiddleware(jwt *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
			}

			claims, err := jwt.ValidateToken(parts[1])
			if err != nil {
				log.Error("Invalid JWT token", zap.Error(err))
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
			}

			if tenant := tenantctx.Tenant(c); tenant != nil &&
				claims.TenantIdentifier != "" && claims.TenantIdentifier != tenant.Identifier {
				log.Warn("Cross-tenant token use attempt",
					zap.String("token_tenant", claims.TenantIdentifier),
					zap.String("request_tenant", tenant.Identifier))
				return c.JSON(http.StatusForbidden, echo.Map{"error": "access denied"})
			}

			c.Set("user", claims)

			return next(c)
		}
	}
}
