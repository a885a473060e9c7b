package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/embedding"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/quota"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// FAQHandler manages a tenant's FAQ records.
type FAQHandler struct {
	provider embedding.Provider
	enforcer *quota.Enforcer
}

// NewFAQHandler creates the handler. The embedding provider regenerates the
// question vector on every save; the enforcer guards creation against the
// plan's FAQ limit.
func NewFAQHandler(provider embedding.Provider, enforcer *quota.Enforcer) *FAQHandler {
	return &FAQHandler{provider: provider, enforcer: enforcer}
}

type faqRequest struct {
	Question     string          `json:"question"`
	ResponseType string          `json:"response_type"`
	Answer       string          `json:"answer"`
	RichResponse json.RawMessage `json:"rich_response"`
}

func (r *faqRequest) validate() string {
	if r.Question == "" {
		return "question is required"
	}
	switch r.ResponseType {
	case "", model.ResponseTypeText, model.ResponseTypeRich:
	default:
		return "response_type must be 'text' or 'rich'"
	}
	if r.ResponseType == model.ResponseTypeRich && len(r.RichResponse) == 0 {
		return "rich_response is required for rich FAQs"
	}
	return ""
}

// embedQuestion computes the question vector. A provider outage degrades to
// a nil vector: the FAQ is saved but sits out of matching until re-saved.
func (h *FAQHandler) embedQuestion(c echo.Context, question string) model.Vector {
	vector, err := h.provider.Embed(c.Request().Context(), question)
	if err != nil {
		logger.FromEcho(c).Warn("embedding unavailable, saving FAQ without vector", zap.Error(err))
		return nil
	}
	return vector
}

// CreateFAQ handles POST /api/v1/faqs.
func (h *FAQHandler) CreateFAQ(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := tenantctx.Tenant(c)
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	var req faqRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	if err := h.enforcer.Check(c.Request().Context(), tenant, partition, quota.KindFAQ); err != nil {
		var qe *quota.QuotaError
		if errors.As(err, &qe) {
			metrics.QuotaDeniedCounter.WithLabelValues(tenant.Identifier, string(quota.KindFAQ)).Inc()
			return c.JSON(http.StatusPaymentRequired, echo.Map{"error": qe.Error()})
		}
		log.Error("faq quota check failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	faq := model.FAQ{
		Question:     req.Question,
		ResponseType: req.ResponseType,
		Answer:       req.Answer,
		RichResponse: string(req.RichResponse),
	}
	if faq.ResponseType == "" {
		faq.ResponseType = model.ResponseTypeText
	}
	faq.QuestionVector = h.embedQuestion(c, faq.Question)

	if err := partition.CreateFAQ(c.Request().Context(), &faq); err != nil {
		log.Error("failed to create FAQ", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "FAQ creation failed"})
	}

	log.Info("FAQ created",
		zap.String("tenant", tenant.Identifier),
		zap.Uint("id", faq.ID))

	return c.JSON(http.StatusCreated, faq)
}

// UpdateFAQ handles PUT /api/v1/faqs/:id. The vector is regenerated
// unconditionally so it can never drift from the question text.
func (h *FAQHandler) UpdateFAQ(c echo.Context) error {
	log := logger.FromEcho(c)
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid FAQ ID"})
	}

	faq, err := partition.FAQByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "FAQ not found"})
		}
		log.Error("failed to load FAQ", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}

	var req faqRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	faq.Question = req.Question
	if req.ResponseType != "" {
		faq.ResponseType = req.ResponseType
	}
	faq.Answer = req.Answer
	faq.RichResponse = string(req.RichResponse)
	faq.QuestionVector = h.embedQuestion(c, faq.Question)

	if err := partition.UpdateFAQ(c.Request().Context(), faq); err != nil {
		log.Error("failed to update FAQ", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "FAQ update failed"})
	}

	return c.JSON(http.StatusOK, faq)
}

// ListFAQs handles GET /api/v1/faqs.
func (h *FAQHandler) ListFAQs(c echo.Context) error {
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	faqs, err := partition.ListFAQs(c.Request().Context())
	if err != nil {
		logger.FromEcho(c).Error("failed to list FAQs", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, faqs)
}

// GetFAQ handles GET /api/v1/faqs/:id.
func (h *FAQHandler) GetFAQ(c echo.Context) error {
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid FAQ ID"})
	}

	faq, err := partition.FAQByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "FAQ not found"})
		}
		logger.FromEcho(c).Error("failed to load FAQ", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, faq)
}

// DeleteFAQ handles DELETE /api/v1/faqs/:id.
func (h *FAQHandler) DeleteFAQ(c echo.Context) error {
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid FAQ ID"})
	}

	if err := partition.DeleteFAQ(c.Request().Context(), uint(id)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "FAQ not found"})
		}
		logger.FromEcho(c).Error("failed to delete FAQ", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.NoContent(http.StatusNoContent)
}
