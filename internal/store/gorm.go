package store

import (
	"context"
	"errors"
	"time"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/internal/model"
	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/database"
	"gorm.io/gorm"
)

// PartitionModels are the entity types migrated into every tenant schema.
var PartitionModels = []interface{}{
	&model.FAQ{},
	&model.ChatRule{},
	&model.FormSubmission{},
	&model.AnalyticsLog{},
}

// DirectoryModels are the shared (public schema) entity types.
var DirectoryModels = []interface{}{
	&model.Plan{},
	&model.Subscription{},
	&model.Tenant{},
}

// GormStore implements Store on PostgreSQL with one schema per tenant.
type GormStore struct {
	db         *gorm.DB
	partitions *database.PartitionManager
}

// NewGormStore creates a store over the shared connection and the partition
// manager. The shared connection must already be migrated for the directory
// models.
func NewGormStore(db *gorm.DB, partitions *database.PartitionManager) *GormStore {
	return &GormStore{db: db, partitions: partitions}
}

func (s *GormStore) TenantByIdentifier(ctx context.Context, identifier string) (*model.Tenant, error) {
	var tenant model.Tenant
	err := s.db.WithContext(ctx).
		Preload("Subscription").
		Preload("Subscription.Plan").
		Where("identifier = ?", identifier).
		First(&tenant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &tenant, nil
}

func (s *GormStore) CreateTenant(ctx context.Context, t *model.Tenant) error {
	if err := s.db.WithContext(ctx).Create(t).Error; err != nil {
		return err
	}
	return s.partitions.Provision(t.Identifier, PartitionModels...)
}

func (s *GormStore) SaveSubscription(ctx context.Context, sub *model.Subscription) error {
	return s.db.WithContext(ctx).Save(sub).Error
}

func (s *GormStore) Partition(identifier string) (Partition, error) {
	db, err := s.partitions.Partition(identifier)
	if err != nil {
		return nil, err
	}
	return &gormPartition{db: db}, nil
}

func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// gormPartition runs every query on a connection whose search_path is
// pinned to one tenant schema.
type gormPartition struct {
	db *gorm.DB
}

func wrapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (p *gormPartition) CreateFAQ(ctx context.Context, f *model.FAQ) error {
	return p.db.WithContext(ctx).Create(f).Error
}

func (p *gormPartition) UpdateFAQ(ctx context.Context, f *model.FAQ) error {
	return p.db.WithContext(ctx).Save(f).Error
}

func (p *gormPartition) DeleteFAQ(ctx context.Context, id uint) error {
	res := p.db.WithContext(ctx).Delete(&model.FAQ{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *gormPartition) FAQByID(ctx context.Context, id uint) (*model.FAQ, error) {
	var faq model.FAQ
	if err := p.db.WithContext(ctx).First(&faq, id).Error; err != nil {
		return nil, wrapNotFound(err)
	}
	return &faq, nil
}

func (p *gormPartition) ListFAQs(ctx context.Context) ([]model.FAQ, error) {
	var faqs []model.FAQ
	if err := p.db.WithContext(ctx).Order("id").Find(&faqs).Error; err != nil {
		return nil, err
	}
	return faqs, nil
}

func (p *gormPartition) CountFAQs(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&model.FAQ{}).Count(&count).Error
	return count, err
}

func (p *gormPartition) CreateRule(ctx context.Context, r *model.ChatRule) error {
	return p.db.WithContext(ctx).Create(r).Error
}

func (p *gormPartition) UpdateRule(ctx context.Context, r *model.ChatRule) error {
	return p.db.WithContext(ctx).Save(r).Error
}

func (p *gormPartition) DeleteRule(ctx context.Context, id uint) error {
	res := p.db.WithContext(ctx).Delete(&model.ChatRule{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (p *gormPartition) RuleByNodeID(ctx context.Context, nodeID string) (*model.ChatRule, error) {
	var rule model.ChatRule
	err := p.db.WithContext(ctx).Where("node_id = ?", nodeID).First(&rule).Error
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &rule, nil
}

func (p *gormPartition) ListRules(ctx context.Context) ([]model.ChatRule, error) {
	var rules []model.ChatRule
	if err := p.db.WithContext(ctx).Order("id").Find(&rules).Error; err != nil {
		return nil, err
	}
	return rules, nil
}

func (p *gormPartition) CreateSubmission(ctx context.Context, sub *model.FormSubmission) error {
	return p.db.WithContext(ctx).Create(sub).Error
}

func (p *gormPartition) ListSubmissions(ctx context.Context) ([]model.FormSubmission, error) {
	var subs []model.FormSubmission
	if err := p.db.WithContext(ctx).Order("id desc").Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (p *gormPartition) CountSubmissions(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&model.FormSubmission{}).Count(&count).Error
	return count, err
}

func (p *gormPartition) CountSubmissionsSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).Model(&model.FormSubmission{}).
		Where("submitted_at >= ?", since).
		Count(&count).Error
	return count, err
}

func (p *gormPartition) AppendLog(ctx context.Context, l *model.AnalyticsLog) error {
	return p.db.WithContext(ctx).Create(l).Error
}

func (p *gormPartition) ListLogs(ctx context.Context, limit int) ([]model.AnalyticsLog, error) {
	var logs []model.AnalyticsLog
	q := p.db.WithContext(ctx).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (p *gormPartition) CountLogs(ctx context.Context, eventType, message string) (int64, error) {
	var count int64
	q := p.db.WithContext(ctx).Model(&model.AnalyticsLog{}).
		Where("event_type = ?", eventType)
	if message != "" {
		q = q.Where("details->>'message' = ?", message)
	}
	err := q.Count(&count).Error
	return count, err
}
