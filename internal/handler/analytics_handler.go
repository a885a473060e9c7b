package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AnalyticsHandler serves the dashboard's read-only views over the
// append-only analytics log.
type AnalyticsHandler struct {
	welcomeNode string
}

// NewAnalyticsHandler creates the handler. welcomeNode is the rule payload
// counted as a started chat.
func NewAnalyticsHandler(welcomeNode string) *AnalyticsHandler {
	return &AnalyticsHandler{welcomeNode: welcomeNode}
}

// ListLogs handles GET /api/v1/analytics.
func (h *AnalyticsHandler) ListLogs(c echo.Context) error {
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	limit := 100
	if raw := c.QueryParam("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = parsed
	}

	logs, err := partition.ListLogs(c.Request().Context(), limit)
	if err != nil {
		logger.FromEcho(c).Error("failed to list analytics logs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, logs)
}

// Summary handles GET /api/v1/analytics/summary: the aggregate counts
// backing the dashboard homepage.
func (h *AnalyticsHandler) Summary(c echo.Context) error {
	log := logger.FromEcho(c)
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	ctx := c.Request().Context()
	now := time.Now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	fail := func(err error) error {
		log.Error("failed to build analytics summary", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	totalLeads, err := partition.CountSubmissions(ctx)
	if err != nil {
		return fail(err)
	}
	leadsToday, err := partition.CountSubmissionsSince(ctx, startOfDay)
	if err != nil {
		return fail(err)
	}
	chatsStarted, err := partition.CountLogs(ctx, "interaction_rule", h.welcomeNode)
	if err != nil {
		return fail(err)
	}
	faqsClicked, err := partition.CountLogs(ctx, "interaction_text", "")
	if err != nil {
		return fail(err)
	}
	chatRedirects, err := partition.CountLogs(ctx, "interaction_rule", ShowFormNode)
	if err != nil {
		return fail(err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"totalLeadsCaptured": totalLeads,
		"leadsCapturedToday": leadsToday,
		"chatsStarted":       chatsStarted,
		"faqsClicked":        faqsClicked,
		"chatRedirects":      chatRedirects,
	})
}
