package store

import (
	"context"
	"sync"
	"time"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
)

// MemoryStore implements Store with in-process maps. It backs the "memory"
// store driver for local development and the test suites. Partitions are
// keyed by tenant identifier and created on first use.
type MemoryStore struct {
	mu         sync.RWMutex
	tenants    map[string]*model.Tenant
	subs       map[uint]*model.Subscription
	partitions map[string]*memoryPartition
	nextSubID  uint
	nextTenant uint
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		tenants:    make(map[string]*model.Tenant),
		subs:       make(map[uint]*model.Subscription),
		partitions: make(map[string]*memoryPartition),
	}
}

func (s *MemoryStore) TenantByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tenants[identifier]
	if !ok {
		return nil, ErrNotFound
	}
	out := *t
	if t.Subscription != nil {
		sub := *t.Subscription
		out.Subscription = &sub
	}
	return &out, nil
}

func (s *MemoryStore) CreateTenant(ctx context.Context, t *model.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTenant++
	t.ID = s.nextTenant
	t.CreatedAt = time.Now()

	if t.Subscription != nil && t.Subscription.ID == 0 {
		s.nextSubID++
		t.Subscription.ID = s.nextSubID
		id := t.Subscription.ID
		t.SubscriptionID = &id
	}
	if t.Subscription != nil {
		sub := *t.Subscription
		s.subs[sub.ID] = &sub
	}

	stored := *t
	s.tenants[t.Identifier] = &stored
	if _, ok := s.partitions[t.Identifier]; !ok {
		s.partitions[t.Identifier] = newMemoryPartition()
	}
	return nil
}

func (s *MemoryStore) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sub.ID == 0 {
		s.nextSubID++
		sub.ID = s.nextSubID
	}
	stored := *sub
	s.subs[sub.ID] = &stored

	// Keep tenant snapshots pointing at the latest subscription state.
	for _, t := range s.tenants {
		if t.Subscription != nil && t.Subscription.ID == sub.ID {
			snap := stored
			t.Subscription = &snap
		}
	}
	return nil
}

// SubscriptionByID returns the stored subscription state. Test hooks and
// the dashboard use it to observe lazy-expiry corrections.
func (s *MemoryStore) SubscriptionByID(id uint) (*model.Subscription, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[id]
	if !ok {
		return nil, false
	}
	out := *sub
	return &out, true
}

func (s *MemoryStore) Partition(identifier string) (Partition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.partitions[identifier]
	if !ok {
		p = newMemoryPartition()
		s.partitions[identifier] = p
	}
	return p, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// memoryPartition keeps one tenant's data behind its own lock.
type memoryPartition struct {
	mu          sync.RWMutex
	faqs        []model.FAQ
	rules       []model.ChatRule
	submissions []model.FormSubmission
	logs        []model.AnalyticsLog
	nextFAQ     uint
	nextRule    uint
	nextSub     uint
	nextLog     uint
}

func newMemoryPartition() *memoryPartition {
	return &memoryPartition{}
}

func (p *memoryPartition) CreateFAQ(ctx context.Context, f *model.FAQ) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextFAQ++
	f.ID = p.nextFAQ
	f.CreatedAt = time.Now()
	f.UpdatedAt = f.CreatedAt
	p.faqs = append(p.faqs, *f)
	return nil
}

func (p *memoryPartition) UpdateFAQ(ctx context.Context, f *model.FAQ) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.faqs {
		if p.faqs[i].ID == f.ID {
			f.UpdatedAt = time.Now()
			p.faqs[i] = *f
			return nil
		}
	}
	return ErrNotFound
}

func (p *memoryPartition) DeleteFAQ(ctx context.Context, id uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.faqs {
		if p.faqs[i].ID == id {
			p.faqs = append(p.faqs[:i], p.faqs[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (p *memoryPartition) FAQByID(ctx context.Context, id uint) (*model.FAQ, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i := range p.faqs {
		if p.faqs[i].ID == id {
			faq := p.faqs[i]
			return &faq, nil
		}
	}
	return nil, ErrNotFound
}

func (p *memoryPartition) ListFAQs(ctx context.Context) ([]model.FAQ, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	// Insertion order is ID order.
	out := make([]model.FAQ, len(p.faqs))
	copy(out, p.faqs)
	return out, nil
}

func (p *memoryPartition) CountFAQs(ctx context.Context) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int64(len(p.faqs)), nil
}

func (p *memoryPartition) CreateRule(ctx context.Context, r *model.ChatRule) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextRule++
	r.ID = p.nextRule
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	p.rules = append(p.rules, *r)
	return nil
}

func (p *memoryPartition) UpdateRule(ctx context.Context, r *model.ChatRule) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.rules {
		if p.rules[i].ID == r.ID {
			r.UpdatedAt = time.Now()
			p.rules[i] = *r
			return nil
		}
	}
	return ErrNotFound
}

func (p *memoryPartition) DeleteRule(ctx context.Context, id uint) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := range p.rules {
		if p.rules[i].ID == id {
			p.rules = append(p.rules[:i], p.rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (p *memoryPartition) RuleByNodeID(ctx context.Context, nodeID string) (*model.ChatRule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	for i := range p.rules {
		if p.rules[i].NodeID == nodeID {
			rule := p.rules[i]
			return &rule, nil
		}
	}
	return nil, ErrNotFound
}

func (p *memoryPartition) ListRules(ctx context.Context) ([]model.ChatRule, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]model.ChatRule, len(p.rules))
	copy(out, p.rules)
	return out, nil
}

func (p *memoryPartition) CreateSubmission(ctx context.Context, s *model.FormSubmission) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextSub++
	s.ID = p.nextSub
	if s.SubmittedAt.IsZero() {
		s.SubmittedAt = time.Now()
	}
	p.submissions = append(p.submissions, *s)
	return nil
}

func (p *memoryPartition) ListSubmissions(ctx context.Context) ([]model.FormSubmission, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]model.FormSubmission, 0, len(p.submissions))
	for i := len(p.submissions) - 1; i >= 0; i-- {
		out = append(out, p.submissions[i])
	}
	return out, nil
}

func (p *memoryPartition) CountSubmissions(ctx context.Context) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return int64(len(p.submissions)), nil
}

func (p *memoryPartition) CountSubmissionsSince(ctx context.Context, since time.Time) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var count int64
	for i := range p.submissions {
		if !p.submissions[i].SubmittedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

func (p *memoryPartition) AppendLog(ctx context.Context, l *model.AnalyticsLog) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.nextLog++
	l.ID = p.nextLog
	if l.Timestamp.IsZero() {
		l.Timestamp = time.Now()
	}
	p.logs = append(p.logs, *l)
	return nil
}

func (p *memoryPartition) ListLogs(ctx context.Context, limit int) ([]model.AnalyticsLog, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]model.AnalyticsLog, 0, len(p.logs))
	for i := len(p.logs) - 1; i >= 0; i-- {
		out = append(out, p.logs[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (p *memoryPartition) CountLogs(ctx context.Context, eventType, message string) (int64, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	var count int64
	for i := range p.logs {
		if p.logs[i].EventType != eventType {
			continue
		}
		if message != "" && p.logs[i].DetailMessage() != message {
			continue
		}
		count++
	}
	return count, nil
}
