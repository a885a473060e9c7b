package handler

import (
	"net/http"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/labstack/echo/v4"
)

// HealthCheck reports service and storage health.
func HealthCheck(st store.Store) echo.HandlerFunc {
	return func(c echo.Context) error {
		if err := st.Ping(c.Request().Context()); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{
				"status": "unhealthy",
				"error":  "storage unreachable",
			})
		}
		return c.JSON(http.StatusOK, echo.Map{
			"status":  "healthy",
			"service": "chatbot",
		})
	}
}
