// Package tenantctx carries the resolved tenant and its storage partition
// through the request. Both live only in the request's own context, so the
// active partition is request-scoped state: concurrent requests for
// different tenants can never observe each other's handles.
package tenantctx

import (
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
	"github.com/labstack/echo/v4"
)

const (
	tenantKey    = "tenant"
	partitionKey = "partition"
)

// SetTenant attaches the resolved tenant to the request.
func SetTenant(c echo.Context, t *model.Tenant) {
	c.Set(tenantKey, t)
}

// Tenant returns the resolved tenant, or nil when the request carried no
// tenant header.
func Tenant(c echo.Context) *model.Tenant {
	t, _ := c.Get(tenantKey).(*model.Tenant)
	return t
}

// SetPartition attaches the tenant's storage partition to the request.
func SetPartition(c echo.Context, p store.Partition) {
	c.Set(partitionKey, p)
}

// Partition returns the active storage partition, or nil when no tenant
// context is active.
func Partition(c echo.Context) store.Partition {
	p, _ := c.Get(partitionKey).(store.Partition)
	return p
}

// Clear releases the tenant context. The tenant middleware calls it
// unconditionally once the handler returns so nothing tenant-scoped can
// outlive the request.
func Clear(c echo.Context) {
	c.Set(tenantKey, nil)
	c.Set(partitionKey, nil)
}
