package database

import (
	"fmt"
	"regexp"
	"sync"

	"github.com/chanchativarsha/saas-multi-tenant-chatbot/pkg/config"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the shared (public schema) database connection used for the
// tenant directory.
func InitDB(dbConfig *config.DBConfig) (*gorm.DB, error) {
	return open(dbConfig, dbConfig.GetDSN(), dbConfig.MaxOpenConns)
}

// MigrateModels runs migrations for the provided models on the given
// connection.
func MigrateModels(db *gorm.DB, models ...interface{}) error {
	if db == nil {
		return fmt.Errorf("database is not initialized")
	}

	if err := db.AutoMigrate(models...); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	return nil
}

func open(dbConfig *config.DBConfig, dsn string, maxOpen int) (*gorm.DB, error) {
	pgConfig := postgres.Config{
		DSN:                  dsn,
		PreferSimpleProtocol: true, // Disables implicit prepared statement usage
	}

	db, err := gorm.Open(postgres.New(pgConfig), &gorm.Config{
		Logger: logger.Default.LogMode(dbConfig.LogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database object: %w", err)
	}

	sqlDB.SetMaxIdleConns(dbConfig.MaxIdleConns)
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetConnMaxLifetime(dbConfig.ConnMaxLifetime)

	return db, nil
}

// schema names come straight from the X-Client-ID header, so only a strict
// character set is ever interpolated into DDL or a DSN.
var schemaNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// ValidSchemaName reports whether the identifier is safe to use as a
// PostgreSQL schema name.
func ValidSchemaName(name string) bool {
	return schemaNamePattern.MatchString(name)
}

// PartitionManager hands out per-tenant database connections. Each tenant
// schema gets its own connection pool opened with search_path pinned to that
// schema, so a handle can never read or write another tenant's tables.
// Handles are cached; concurrent requests for different tenants each get
// their own handle.
type PartitionManager struct {
	dbConfig *config.DBConfig
	shared   *gorm.DB

	mu    sync.Mutex
	conns map[string]*gorm.DB
}

// NewPartitionManager creates a manager on top of the shared connection.
func NewPartitionManager(shared *gorm.DB, dbConfig *config.DBConfig) *PartitionManager {
	return &PartitionManager{
		dbConfig: dbConfig,
		shared:   shared,
		conns:    make(map[string]*gorm.DB),
	}
}

// Partition returns the connection pinned to the tenant's schema, opening
// and caching it on first use.
func (m *PartitionManager) Partition(schema string) (*gorm.DB, error) {
	if !ValidSchemaName(schema) {
		return nil, fmt.Errorf("invalid schema name %q", schema)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if db, ok := m.conns[schema]; ok {
		return db, nil
	}

	dsn := fmt.Sprintf("%s search_path=%s", m.dbConfig.GetDSN(), schema)
	// Tenant pools stay small; the shared pool carries the directory load.
	db, err := open(m.dbConfig, dsn, 5)
	if err != nil {
		return nil, fmt.Errorf("failed to open partition %s: %w", schema, err)
	}

	m.conns[schema] = db
	return db, nil
}

// Provision creates the tenant's schema if missing and migrates the given
// partition models inside it.
func (m *PartitionManager) Provision(schema string, models ...interface{}) error {
	if !ValidSchemaName(schema) {
		return fmt.Errorf("invalid schema name %q", schema)
	}

	if err := m.shared.Exec(fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", schema)).Error; err != nil {
		return fmt.Errorf("failed to create schema %s: %w", schema, err)
	}

	db, err := m.Partition(schema)
	if err != nil {
		return err
	}

	return MigrateModels(db, models...)
}
