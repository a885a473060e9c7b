package handler

import (
	"net/http"
	"strings"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// SubmissionHandler captures and lists leads. Creation is public (the
// widget posts it); listing sits behind the dashboard JWT. The lead quota
// is pre-checked by the tenant middleware before creation reaches here.
type SubmissionHandler struct{}

// NewSubmissionHandler creates the handler.
func NewSubmissionHandler() *SubmissionHandler {
	return &SubmissionHandler{}
}

type submissionRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (r *submissionRequest) validate() string {
	if r.Name == "" {
		return "name is required"
	}
	if r.Email == "" || !strings.Contains(r.Email, "@") {
		return "a valid email is required"
	}
	if r.Message == "" {
		return "message is required"
	}
	return ""
}

// CreateSubmission handles POST /api/v1/submissions.
func (h *SubmissionHandler) CreateSubmission(c echo.Context) error {
	log := logger.FromEcho(c)
	tenant := tenantctx.Tenant(c)
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	var req submissionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if msg := req.validate(); msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}

	submission := model.FormSubmission{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}

	if err := partition.CreateSubmission(c.Request().Context(), &submission); err != nil {
		log.Error("failed to create submission", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "submission failed"})
	}

	log.Info("Lead captured",
		zap.String("tenant", tenant.Identifier),
		zap.Uint("id", submission.ID))

	return c.JSON(http.StatusCreated, submission)
}

// ListSubmissions handles GET /api/v1/submissions.
func (h *SubmissionHandler) ListSubmissions(c echo.Context) error {
	partition := tenantctx.Partition(c)
	if partition == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "tenant context required"})
	}

	submissions, err := partition.ListSubmissions(c.Request().Context())
	if err != nil {
		logger.FromEcho(c).Error("failed to list submissions", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	return c.JSON(http.StatusOK, submissions)
}
