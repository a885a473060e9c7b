package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/quota"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/logger"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/metrics"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// TenantHeader selects the tenant for a request.
const TenantHeader = "X-Client-ID"

// TenantResolver resolves the tenant from the X-Client-ID header before any
// handler runs. Requests without the header pass through with no tenant
// attached. For requests that carry it, the middleware:
//
//  1. looks the tenant up in the directory (404 if unknown),
//  2. on public interaction endpoints, validates the subscription (402 if
//     missing, inactive or expired — expiry is corrected and persisted on
//     the spot),
//  3. attaches the tenant and its storage partition to the request context,
//  4. on lead submissions, pre-checks the lead quota (402 on breach), and
//  5. releases the tenant context once the handler returns, success or not.
func TenantResolver(st store.Store, enforcer *quota.Enforcer) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// A fresh request starts with no tenant context, whatever any
			// previous request on this connection did.
			tenantctx.Clear(c)

			identifier := c.Request().Header.Get(TenantHeader)
			if identifier == "" {
				return next(c)
			}

			log := logger.FromEcho(c)
			ctx := c.Request().Context()

			tenant, err := st.TenantByIdentifier(ctx, identifier)
			if err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return c.JSON(http.StatusNotFound, echo.Map{
						"error": fmt.Sprintf("Client with ID '%s' does not exist.", identifier),
					})
				}
				log.Error("tenant lookup failed", zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			path := c.Request().URL.Path
			if isPublicAPI(path) {
				sub := tenant.Subscription

				if sub == nil {
					return c.JSON(http.StatusPaymentRequired, echo.Map{
						"error": "No subscription found. Please subscribe.",
					})
				}

				if !sub.Active {
					return c.JSON(http.StatusPaymentRequired, echo.Map{
						"error": "Subscription is inactive. Please contact support.",
					})
				}

				// Lazy expiry: the first check past the expiry date flips
				// the subscription off and persists it before rejecting.
				if sub.ExpireIfDue(time.Now()) {
					if err := st.SaveSubscription(ctx, sub); err != nil {
						log.Error("failed to persist expired subscription", zap.Error(err))
					}
					return c.JSON(http.StatusPaymentRequired, echo.Map{
						"error": "Subscription has expired. Please renew.",
					})
				}
			}

			partition, err := st.Partition(tenant.Identifier)
			if err != nil {
				log.Error("failed to open tenant partition",
					zap.String("tenant", tenant.Identifier), zap.Error(err))
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
			}

			tenantctx.SetTenant(c, tenant)
			tenantctx.SetPartition(c, partition)
			// The release must run even when the handler fails; a leaked
			// tenant context would redirect an unrelated request's data
			// access into the wrong partition.
			defer tenantctx.Clear(c)

			if isLeadSubmission(path, c.Request().Method) {
				if err := enforcer.Check(ctx, tenant, partition, quota.KindLead); err != nil {
					var qe *quota.QuotaError
					if errors.As(err, &qe) {
						metrics.QuotaDeniedCounter.WithLabelValues(tenant.Identifier, string(quota.KindLead)).Inc()
						return c.JSON(http.StatusPaymentRequired, echo.Map{"error": qe.Error()})
					}
					log.Error("lead quota check failed", zap.Error(err))
					return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
				}
			}

			return next(c)
		}
	}
}

// isPublicAPI reports whether the path is one of the public-facing widget
// endpoints that require a valid subscription.
func isPublicAPI(path string) bool {
	return strings.HasPrefix(path, "/api/v1/interact") ||
		strings.HasPrefix(path, "/api/v1/submissions")
}

func isLeadSubmission(path, method string) bool {
	return strings.HasPrefix(path, "/api/v1/submissions") && method == http.MethodPost
}
