package database

import (
	"context"
	"embed"
	"fmt"
	"path"
	"slices"
	"strconv"
	"strings"

	"buildplate.dev/plate-api-gateway/app/utils/logger"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"
)

//go:embed migrationsqls/*.sql
var migrationSqls embed.FS

type DatabaseMigration struct {
	gorm.Model
	Version int64 `gorm:"not null;uniqueIndex"`
}

type SchemaVersion struct {
	Migrations []int64 `json:"migrations"`
}

// NewSchemaVersion lists the embedded migration files in ascending order.
func NewSchemaVersion() (SchemaVersion, error) {
	entries, err := migrationSqls.ReadDir("migrationsqls")
	if err != nil {
		return SchemaVersion{}, err
	}
	sv := SchemaVersion{}
	for _, entry := range entries {
		name := strings.TrimSuffix(entry.Name(), ".sql")
		version, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			return SchemaVersion{}, fmt.Errorf("invalid migration file name %s: %w", entry.Name(), err)
		}
		sv.Migrations = append(sv.Migrations, version)
	}
	slices.Sort(sv.Migrations)
	return sv, nil
}

type DBMigrator struct {
	db *gorm.DB
}

func NewDBMigrator(db *gorm.DB) *DBMigrator {
	return &DBMigrator{
		db: db,
	}
}

func (d *DBMigrator) initialize() error {
	db := d.db.Clauses(dbresolver.Write)
	if err := db.AutoMigrate(&DatabaseMigration{}); err != nil {
		return fmt.Errorf("failed to create 'database_migration' table: %w", err)
	}
	var count int64
	if err := db.Model(&DatabaseMigration{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to query migration records: %w", err)
	}
	if count == 0 {
		if err := db.Create(&DatabaseMigration{Version: 0}).Error; err != nil {
			return fmt.Errorf("failed to insert initial migration record: %w", err)
		}
	}
	return nil
}

func (d *DBMigrator) lockVersion(ctx context.Context, tx *gorm.DB) (DatabaseMigration, error) {
	var m DatabaseMigration

	if err := tx.WithContext(ctx).
		Raw("SELECT id, version FROM database_migration ORDER BY id LIMIT 1 FOR UPDATE").
		Scan(&m).Error; err != nil {
		return m, err
	}

	if m.ID == 0 {
		return m, fmt.Errorf("no row found in database_migration")
	}
	return m, nil
}

// Migrate applies every embedded migration newer than the recorded version in one transaction.
func (d *DBMigrator) Migrate() error {
	if err := d.initialize(); err != nil {
		return err
	}
	sv, err := NewSchemaVersion()
	if err != nil {
		return err
	}
	if len(sv.Migrations) == 0 {
		return nil
	}
	ctx := context.Background()
	return d.db.Clauses(dbresolver.Write).WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion, err := d.lockVersion(ctx, tx)
		if err != nil {
			return err
		}
		applied := currentVersion.Version
		for _, migrationVersion := range sv.Migrations {
			if applied >= migrationVersion {
				continue
			}
			content, err := migrationSqls.ReadFile(path.Join("migrationsqls", fmt.Sprintf("%d.sql", migrationVersion)))
			if err != nil {
				return err
			}
			if err := tx.Exec(string(content)).Error; err != nil {
				return fmt.Errorf("migration %d failed: %w", migrationVersion, err)
			}
			logger.GetLogger().Infof("applied migration %d", migrationVersion)
			applied = migrationVersion
		}
		if applied == currentVersion.Version {
			return nil
		}
		return tx.Model(&DatabaseMigration{}).
			Where("id = ?", currentVersion.ID).
			Update("version", applied).Error
	})
}
