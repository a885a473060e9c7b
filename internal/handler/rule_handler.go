package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RuleHandler manages a tenant's guided-flow rule nodes.
type RuleHandler struct{}

// NewRuleHandler creates the handler.
func NewRuleHandler() *RuleHandler {
	return &RuleHandler{}
}

type ruleRequest struct {
	NodeID   string          `json:"node_id"`
	RuleData json.RawMessage `json:"rule_data"`
}

func (r *ruleRequest) validate() string {
	if r.NodeID == "" {
		return "node_id is required"
	}
	if r.NodeID == ShowFormNode {
		return "node_id 'show_form' is reserved"
	}
	if len(r.RuleData) > 0 && !json.Valid(r.RuleData) {
		return "rule_data must be valid JSON"
	}
	return ""
}

// CreateRule handles POST /api/v1/rules.
func (h *RuleHandler) CreateRule(c echo.Context) error {
	log := logger.FromEcho(c)
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	rule := model.ChatRule{
		NodeID:   req.NodeID,
		RuleData: string(req.RuleData),
	}
	if rule.RuleData == "" {
		rule.RuleData = "{}"
	}

	if err := partition.CreateRule(c.Request().Context(), &rule); err != nil {
		log.Error("failed to create rule", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rule creation failed"})
	}

	return c.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /api/v1/rules/:id.
func (h *RuleHandler) UpdateRule(c echo.Context) error {
	log := logger.FromEcho(c)
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rule ID"})
	}

	var req ruleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	rule := model.ChatRule{
		ID:       uint(id),
		NodeID:   req.NodeID,
		RuleData: string(req.RuleData),
	}
	if rule.RuleData == "" {
		rule.RuleData = "{}"
	}

	if err := partition.UpdateRule(c.Request().Context(), &rule); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rule not found"})
		}
		log.Error("failed to update rule", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "rule update failed"})
	}

	return c.JSON(http.StatusOK, rule)
}

// ListRules handles GET /api/v1/rules.
func (h *RuleHandler) ListRules(c echo.Context) error {
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	rules, err := partition.ListRules(c.Request().Context())
	if err != nil {
		logger.FromEcho(c).Error("failed to list rules", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, rules)
}

// DeleteRule handles DELETE /api/v1/rules/:id.
func (h *RuleHandler) DeleteRule(c echo.Context) error {
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid rule ID"})
	}

	if err := partition.DeleteRule(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "rule not found"})
		}
		logger.FromEcho(c).Error("failed to delete rule", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}
