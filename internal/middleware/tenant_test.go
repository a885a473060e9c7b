package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/quota"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/tenantctx"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEnv(t *testing.T) (*echo.Echo, *store.MemoryStore) {
	t.Helper()
	ms := store.NewMemoryStore()
	e := echo.New()
	e.Use(TenantResolver(ms, quota.NewEnforcer(quota.PolicyUnlimited)))

	seen := func(c echo.Context) error {
		tenant := tenantctx.Tenant(c)
		name := "none"
		if tenant != nil {
			name = tenant.Identifier
		}
		return c.JSON(http.StatusOK, echo.Map{"tenant": name})
	}
	e.POST("/api/v1/interact", seen)
	e.POST("/api/v1/submissions", seen)
	e.GET("/api/v1/faqs", seen)

	return e, ms
}

func seedTenant(t *testing.T, ms *store.MemoryStore, identifier string, sub *model.Subscription) *model.Tenant {
	t.Helper()
	tenant := &model.Tenant{Identifier: identifier, Name: identifier, Subscription: sub}
	require.NoError(t, ms.CreateTenant(context.Background(), tenant))
	return tenant
}

func do(e *echo.Echo, method, path, clientID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if clientID != "" {
		req.Header.Set(TenantHeader, clientID)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestMissingHeaderPassesThrough(t *testing.T) {
	e, _ := newTestEnv(t)

	rec := do(e, http.MethodPost, "/api/v1/interact", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"none"`)
}

func TestUnknownTenantIs404(t *testing.T) {
	e, _ := newTestEnv(t)

	rec := do(e, http.MethodPost, "/api/v1/interact", "ghost")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "does not exist")
}

func TestSubscriptionValidation(t *testing.T) {
	t.Run("missing subscription is 402", func(t *testing.T) {
		e, ms := newTestEnv(t)
		seedTenant(t, ms, "acme", nil)

		rec := do(e, http.MethodPost, "/api/v1/interact", "acme")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Contains(t, rec.Body.String(), "No subscription found")
	})

	t.Run("inactive subscription is 402", func(t *testing.T) {
		e, ms := newTestEnv(t)
		seedTenant(t, ms, "acme", &model.Subscription{Active: false})

		rec := do(e, http.MethodPost, "/api/v1/interact", "acme")
		assert.Equal(t, http.StatusPaymentRequired, rec.Code)
		assert.Contains(t, rec.Body.String(), "inactive")
	})

	t.Run("valid subscription reaches the handler", func(t *testing.T) {
		e, ms := newTestEnv(t)
		seedTenant(t, ms, "acme", &model.Subscription{Active: true})

		rec := do(e, http.MethodPost, "/api/v1/interact", "acme")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"acme"`)
	})

	t.Run("dashboard endpoints skip the subscription check", func(t *testing.T) {
		e, ms := newTestEnv(t)
		seedTenant(t, ms, "acme", nil)

		rec := do(e, http.MethodGet, "/api/v1/faqs", "acme")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestLazyExpiryFlipsAndPersists(t *testing.T) {
	e, ms := newTestEnv(t)
	yesterday := time.Now().AddDate(0, 0, -1).Truncate(24 * time.Hour)
	tenant := seedTenant(t, ms, "acme", &model.Subscription{Active: true, ExpiresOn: &yesterday})

	rec := do(e, http.MethodPost, "/api/v1/interact", "acme")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")

	stored, ok := ms.SubscriptionByID(tenant.Subscription.ID)
	require.True(t, ok)
	assert.False(t, stored.Active, "expiry check must persist the inactive flag")
}

func TestLeadQuotaPreCheck(t *testing.T) {
	e, ms := newTestEnv(t)
	seedTenant(t, ms, "acme", &model.Subscription{
		Active: true,
		Plan:   &model.Plan{Name: "starter", MaxFAQs: 10, MaxLeads: 1},
	})

	p, err := ms.Partition("acme")
	require.NoError(t, err)
	require.NoError(t, p.CreateSubmission(context.Background(), &model.FormSubmission{
		Name: "n", Email: "n@example.com", Message: "m",
	}))

	rec := do(e, http.MethodPost, "/api/v1/submissions", "acme")
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)
	assert.Contains(t, rec.Body.String(), "Lead limit")

	count, err := p.CountSubmissions(context.Background())
	require.NoError(t, err)
	assert.EqualValues(t, 1, count, "no record may be created on a quota breach")
}

func TestContextClearedAfterHandler(t *testing.T) {
	ms := store.NewMemoryStore()
	seedTenant(t, ms, "acme", &model.Subscription{Active: true})

	e := echo.New()
	e.Use(TenantResolver(ms, quota.NewEnforcer(quota.PolicyUnlimited)))

	var inside, after bool
	e.POST("/api/v1/interact", func(c echo.Context) error {
		inside = tenantctx.Tenant(c) != nil
		return c.NoContent(http.StatusOK)
	})
	// Outer middleware observes the context after the resolver released it.
	e.Pre(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			err := next(c)
			after = tenantctx.Tenant(c) != nil
			return err
		}
	})

	rec := do(e, http.MethodPost, "/api/v1/interact", "acme")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, inside, "tenant must be visible inside the handler")
	assert.False(t, after, "tenant context must be released once the handler returns")
}

func TestConcurrentRequestsSeeOwnTenant(t *testing.T) {
	e, ms := newTestEnv(t)
	seedTenant(t, ms, "acme", &model.Subscription{Active: true})
	seedTenant(t, ms, "globex", &model.Subscription{Active: true})

	const rounds = 50
	done := make(chan struct{}, 2)

	for _, id := range []string{"acme", "globex"} {
		go func(id string) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < rounds; i++ {
				rec := do(e, http.MethodPost, "/api/v1/interact", id)
				assert.Equal(t, http.StatusOK, rec.Code)
				assert.Contains(t, rec.Body.String(), `"`+id+`"`)
			}
		}(id)
	}

	<-done
	<-done
}
