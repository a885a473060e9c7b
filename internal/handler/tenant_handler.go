package handler

import (
	"net/http"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/database"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHandler provisions tenants: a directory entry plus an isolated
// storage partition, created together.
type TenantHandler struct {
	store store.Store
}

// NewTenantHandler creates the handler.
func NewTenantHandler(st store.Store) *TenantHandler {
	return &TenantHandler{store: st}
}

type tenantRequest struct {
	Identifier string `json:"identifier"`
	Name       string `json:"name"`
	Website    string `json:"website"`
	Industry   string `json:"industry"`
}

// CreateTenant handles POST /tenants.
func (h *TenantHandler) CreateTenant(c echo.Context) error {
	log := logger.FromEcho(c)

	var req tenantRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
	}
	if !database.ValidSchemaName(req.Identifier) {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error": "identifier must start with a letter and contain only lowercase letters, digits and underscores",
		})
	}

	if _, err := h.store.TenantByIdentifier(c.Request().Context(), req.Identifier); err == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "identifier already in use"})
	}

	tenant := model.Tenant{
		Identifier: req.Identifier,
		Name:       req.Name,
		Website:    req.Website,
		Industry:   req.Industry,
	}

	if err := h.store.CreateTenant(c.Request().Context(), &tenant); err != nil {
		log.Error("failed to provision tenant", zap.String("identifier", req.Identifier), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	log.Info("Tenant provisioned",
		zap.String("identifier", tenant.Identifier),
		zap.Uint("id", tenant.ID))

	return c.JSON(http.StatusCreated, tenant)
}
