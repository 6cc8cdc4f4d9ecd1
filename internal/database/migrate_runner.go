package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"travelcore/internal/observability"

	"gorm.io/gorm"
)

// MigrationStore records which embedded migrations the travel database has run.
type MigrationStore interface {
	Applied(ctx context.Context) ([]int, error)
	Apply(ctx context.Context, m Migration) error
	Revert(ctx context.Context, m Migration) error
}

// SchemaVersion is one row of schema_versions.
type SchemaVersion struct {
	Version   int       `gorm:"primaryKey;autoIncrement:false"`
	Name      string    `gorm:"size:255"`
	AppliedAt time.Time `gorm:"autoCreateTime"`
}

// TableName returns the version ledger table.
func (SchemaVersion) TableName() string { return "schema_versions" }

const createSchemaVersionsSQL = `
CREATE TABLE IF NOT EXISTS schema_versions (
	version BIGINT PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

type migrationStore struct {
	db *gorm.DB
}

// NewMigrationStore returns a MigrationStore backed by schema_versions.
func NewMigrationStore(db *gorm.DB) MigrationStore {
	return &migrationStore{db: db}
}

// Applied returns recorded versions in ascending order. A database without the ledger has none.
func (s *migrationStore) Applied(ctx context.Context) ([]int, error) {
	versions := []int{}
	err := s.db.WithContext(ctx).Model(&SchemaVersion{}).Order("version ASC").Pluck("version", &versions).Error
	switch {
	case err == nil:
		return versions, nil
	case errors.Is(err, gorm.ErrRecordNotFound), missingLedger(err):
		return []int{}, nil
	default:
		return nil, fmt.Errorf("read schema versions: %w", err)
	}
}

func missingLedger(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "no such table") ||
		(strings.Contains(msg, "relation") && strings.Contains(msg, "does not exist"))
}

// Apply runs the up script and records the version in the same transaction.
func (s *migrationStore) Apply(ctx context.Context, m Migration) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.UpScript).Error; err != nil {
			return fmt.Errorf("migration %s: %w", m.String(), err)
		}
		return tx.Create(&SchemaVersion{Version: m.Version, Name: m.Name}).Error
	})
	if err != nil {
		return err
	}
	observability.Logger.InfoContext(ctx, "Schema version applied", slog.String("migration", m.String()))
	return nil
}

// Revert runs the down script and forgets the version in the same transaction.
func (s *migrationStore) Revert(ctx context.Context, m Migration) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(m.DownScript).Error; err != nil {
			return fmt.Errorf("revert %s: %w", m.String(), err)
		}
		return tx.Where("version = ?", m.Version).Delete(&SchemaVersion{}).Error
	})
	if err != nil {
		return err
	}
	observability.Logger.InfoContext(ctx, "Schema version reverted", slog.String("migration", m.String()))
	return nil
}

// RunMigrations brings the travel database up to the newest embedded migration.
func RunMigrations(ctx context.Context, db *gorm.DB) error {
	if err := db.WithContext(ctx).Exec(createSchemaVersionsSQL).Error; err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}
	return applyPending(ctx, NewMigrationStore(db), migrations)
}

func applyPending(ctx context.Context, store MigrationStore, registered []Migration) error {
	applied, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	if err := checkKnownVersions(applied, registered); err != nil {
		return err
	}

	pending := pendingMigrations(applied, registered)
	if len(pending) == 0 {
		observability.Logger.DebugContext(ctx, "Travel schema is current", slog.Int("versions", len(applied)))
		return nil
	}
	for _, m := range pending {
		if err := store.Apply(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func pendingMigrations(applied []int, registered []Migration) []Migration {
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}
	var pending []Migration
	for _, m := range registered {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	return pending
}

// A database that ran migrations this build does not embed was written by a newer build.
func checkKnownVersions(applied []int, registered []Migration) error {
	known := make(map[int]bool, len(registered))
	for _, m := range registered {
		known[m.Version] = true
	}
	var unknown []string
	for _, v := range applied {
		if !known[v] {
			unknown = append(unknown, fmt.Sprintf("%06d", v))
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return fmt.Errorf("schema_versions has versions this build does not embed: %s", strings.Join(unknown, ", "))
}

// RollbackMigration reverts one applied migration.
func RollbackMigration(ctx context.Context, db *gorm.DB, version int) error {
	return rollback(ctx, NewMigrationStore(db), version)
}

func rollback(ctx context.Context, store MigrationStore, version int) error {
	m := GetMigrationByVersion(version)
	if m == nil {
		return fmt.Errorf("migration version %d not found", version)
	}
	applied, err := store.Applied(ctx)
	if err != nil {
		return err
	}
	for _, v := range applied {
		if v == version {
			return store.Revert(ctx, *m)
		}
	}
	return fmt.Errorf("migration %s has not been applied", m.String())
}
