// Package store defines the storage contracts for the shared tenant
// directory and for per-tenant data partitions. A Partition handle is
// request-scoped: the tenant middleware obtains one for the resolved tenant
// and threads it through the request context, so no handler ever touches
// another tenant's data and no shared mutable "current partition" exists.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
)

// ErrNotFound is returned when a looked-up record does not exist.
var ErrNotFound = errors.New("record not found")

// Directory is the shared registry of tenants, plans and subscriptions.
// It is read-mostly; the only in-request write is the lazy expiry flip
// persisted through SaveSubscription.
type Directory interface {
	// TenantByIdentifier resolves a tenant by its routing identifier,
	// with its subscription and plan loaded.
	TenantByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error)

	// CreateTenant registers a tenant and provisions its partition.
	CreateTenant(ctx context.Context, t *model.Tenant) error

	// SaveSubscription persists subscription state changes.
	SaveSubscription(ctx context.Context, s *model.Subscription) error
}

// Partition is the isolated data scope for a single tenant. Implementations
// must guarantee that two Partition handles for different tenants never
// observe each other's rows.
type Partition interface {
	// FAQs
	CreateFAQ(ctx context.Context, f *model.FAQ) error
	UpdateFAQ(ctx context.Context, f *model.FAQ) error
	DeleteFAQ(ctx context.Context, id uint) error
	FAQByID(ctx context.Context, id uint) (*model.FAQ, error)
	// ListFAQs returns all FAQs ordered by ascending ID. The matcher relies
	// on this ordering for its deterministic tie break.
	ListFAQs(ctx context.Context) ([]model.FAQ, error)
	CountFAQs(ctx context.Context) (int64, error)

	// Chat rules
	CreateRule(ctx context.Context, r *model.ChatRule) error
	UpdateRule(ctx context.Context, r *model.ChatRule) error
	DeleteRule(ctx context.Context, id uint) error
	RuleByNodeID(ctx context.Context, nodeID string) (*model.ChatRule, error)
	ListRules(ctx context.Context) ([]model.ChatRule, error)

	// Form submissions
	CreateSubmission(ctx context.Context, s *model.FormSubmission) error
	ListSubmissions(ctx context.Context) ([]model.FormSubmission, error)
	CountSubmissions(ctx context.Context) (int64, error)
	CountSubmissionsSince(ctx context.Context, since time.Time) (int64, error)

	// Analytics (append-only)
	AppendLog(ctx context.Context, l *model.AnalyticsLog) error
	ListLogs(ctx context.Context, limit int) ([]model.AnalyticsLog, error)
	// CountLogs counts events of the given type; when message is non-empty
	// only events whose details.message equals it are counted.
	CountLogs(ctx context.Context, eventType, message string) (int64, error)
}

// Store combines the directory with access to tenant partitions.
type Store interface {
	Directory

	// Partition returns the isolated data scope for the given tenant
	// identifier. The handle is cheap to obtain and safe for use within a
	// single request.
	Partition(identifier string) (Partition, error)

	// Ping verifies the backing storage is reachable.
	Ping(ctx context.Context) error
}
