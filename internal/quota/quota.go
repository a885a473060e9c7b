// Package quota enforces per-tenant plan limits on creation endpoints.
package quota

import (
	"context"
	"fmt"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/store"
)

// Kind identifies the metered resource being created.
type Kind string

const (
	KindFAQ  Kind = "faq"
	KindLead Kind = "lead"
)

// Policy decides how tenants without a subscription or plan are treated.
type Policy string

const (
	// PolicyUnlimited lets unconfigured tenants create without limits.
	PolicyUnlimited Policy = "unlimited"
	// PolicyBlocked denies creation until a plan is configured.
	PolicyBlocked Policy = "blocked"
)

// ParsePolicy maps a config string to a Policy, defaulting to unlimited.
func ParsePolicy(s string) Policy {
	if Policy(s) == PolicyBlocked {
		return PolicyBlocked
	}
	return PolicyUnlimited
}

// QuotaError is returned when a creation would exceed the tenant's plan
// limit or the policy blocks unconfigured tenants. It is surfaced to the
// caller as a payment-required failure.
type QuotaError struct {
	Kind    Kind
	Limit   int
	Blocked bool
}

func (e *QuotaError) Error() string {
	if e.Blocked {
		return fmt.Sprintf("no active plan allows creating %ss", e.Kind)
	}
	switch e.Kind {
	case KindFAQ:
		return fmt.Sprintf("FAQ limit of %d reached for your plan. Please upgrade to add more.", e.Limit)
	default:
		return fmt.Sprintf("Lead limit of %d reached for your plan. Please upgrade.", e.Limit)
	}
}

// Enforcer checks creation requests against the tenant's plan limits.
// The check and the subsequent insert are not atomic; concurrent creations
// near the limit can overshoot slightly. Limits are a business soft cap,
// not a security boundary.
type Enforcer struct {
	policy Policy
}

// NewEnforcer creates an enforcer with the given unconfigured-tenant policy.
func NewEnforcer(policy Policy) *Enforcer {
	return &Enforcer{policy: policy}
}

// Check returns nil when the tenant may create one more resource of the
// given kind in the partition, or a *QuotaError when it may not.
func (e *Enforcer) Check(ctx context.Context, tenant *model.Tenant, partition store.Partition, kind Kind) error {
	plan := tenantPlan(tenant)
	if plan == nil {
		if e.policy == PolicyBlocked {
			return &QuotaError{Kind: kind, Blocked: true}
		}
		return nil
	}

	var count int64
	var limit int
	var err error

	switch kind {
	case KindFAQ:
		limit = plan.MaxFAQs
		count, err = partition.CountFAQs(ctx)
	case KindLead:
		limit = plan.MaxLeads
		count, err = partition.CountSubmissions(ctx)
	default:
		return fmt.Errorf("unknown quota kind %q", kind)
	}
	if err != nil {
		return err
	}

	if count >= int64(limit) {
		return &QuotaError{Kind: kind, Limit: limit}
	}
	return nil
}

func tenantPlan(tenant *model.Tenant) *model.Plan {
	if tenant == nil || tenant.Subscription == nil {
		return nil
	}
	return tenant.Subscription.Plan
}
