package store

import (
	"context"
	"testing"
	"time"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionIsolation(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	a, err := ms.Partition("acme")
	require.NoError(t, err)
	b, err := ms.Partition("globex")
	require.NoError(t, err)

	require.NoError(t, a.CreateFAQ(ctx, &model.FAQ{Question: "acme question", Answer: "acme answer"}))

	aFAQs, err := a.ListFAQs(ctx)
	require.NoError(t, err)
	bFAQs, err := b.ListFAQs(ctx)
	require.NoError(t, err)

	assert.Len(t, aFAQs, 1)
	assert.Empty(t, bFAQs, "a FAQ created in one partition must never appear in another")

	count, err := b.CountFAQs(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDirectoryLookup(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	_, err := ms.TenantByIdentifier(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	tenant := &model.Tenant{
		Identifier: "acme",
		Name:       "Acme",
		Subscription: &model.Subscription{
			Active: true,
			Plan:   &model.Plan{Name: "starter", MaxFAQs: 10, MaxLeads: 100},
		},
	}
	require.NoError(t, ms.CreateTenant(ctx, tenant))

	got, err := ms.TenantByIdentifier(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme", got.Name)
	require.NotNil(t, got.Subscription)
	assert.True(t, got.Subscription.Active)
}

func TestSaveSubscriptionUpdatesTenantView(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()

	tenant := &model.Tenant{
		Identifier:   "acme",
		Name:         "Acme",
		Subscription: &model.Subscription{Active: true},
	}
	require.NoError(t, ms.CreateTenant(ctx, tenant))

	sub := tenant.Subscription
	sub.Active = false
	require.NoError(t, ms.SaveSubscription(ctx, sub))

	got, err := ms.TenantByIdentifier(ctx, "acme")
	require.NoError(t, err)
	require.NotNil(t, got.Subscription)
	assert.False(t, got.Subscription.Active)

	stored, ok := ms.SubscriptionByID(sub.ID)
	require.True(t, ok)
	assert.False(t, stored.Active)
}

func TestRuleLookup(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	p, err := ms.Partition("acme")
	require.NoError(t, err)

	require.NoError(t, p.CreateRule(ctx, &model.ChatRule{NodeID: "welcome_node", RuleData: `{"message":"hi"}`}))

	rule, err := p.RuleByNodeID(ctx, "welcome_node")
	require.NoError(t, err)
	assert.Equal(t, `{"message":"hi"}`, rule.RuleData)

	_, err = p.RuleByNodeID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSubmissionCounts(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	p, err := ms.Partition("acme")
	require.NoError(t, err)

	old := &model.FormSubmission{Name: "old", Email: "o@example.com", Message: "m",
		SubmittedAt: time.Now().AddDate(0, 0, -2)}
	require.NoError(t, p.CreateSubmission(ctx, old))
	require.NoError(t, p.CreateSubmission(ctx, &model.FormSubmission{
		Name: "new", Email: "n@example.com", Message: "m"}))

	total, err := p.CountSubmissions(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	today := time.Now().Add(-time.Hour)
	recent, err := p.CountSubmissionsSince(ctx, today)
	require.NoError(t, err)
	assert.EqualValues(t, 1, recent)
}

func TestLogCounting(t *testing.T) {
	ctx := context.Background()
	ms := NewMemoryStore()
	p, err := ms.Partition("acme")
	require.NoError(t, err)

	appendLog := func(event, message string) {
		require.NoError(t, p.AppendLog(ctx, &model.AnalyticsLog{
			EventType: event,
			Details:   `{"message":"` + message + `"}`,
		}))
	}

	appendLog("interaction_rule", "welcome_node")
	appendLog("interaction_rule", "welcome_node")
	appendLog("interaction_rule", "show_form")
	appendLog("interaction_text", "how do returns work")

	started, err := p.CountLogs(ctx, "interaction_rule", "welcome_node")
	require.NoError(t, err)
	assert.EqualValues(t, 2, started)

	redirects, err := p.CountLogs(ctx, "interaction_rule", "show_form")
	require.NoError(t, err)
	assert.EqualValues(t, 1, redirects)

	texts, err := p.CountLogs(ctx, "interaction_text", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, texts)
}
