package database

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"travelcore/internal/config"
	"travelcore/internal/observability"

	"gorm.io/gorm"
)

// SchemaMode selects how the travel schema is brought up to date.
type SchemaMode string

// Schema modes accepted by DB_SCHEMA_MODE.
const (
	SchemaModeHybrid SchemaMode = "hybrid"
	SchemaModeSQL    SchemaMode = "sql"
	SchemaModeAuto   SchemaMode = "auto"
)

// SchemaPlan is what ApplySchema does for one environment.
type SchemaPlan struct {
	Mode        SchemaMode
	Environment string
	SQL         bool
	AutoMigrate bool
}

// SchemaStatus is a SchemaPlan plus the migration and table state of the database.
type SchemaStatus struct {
	SchemaPlan
	AppliedVersions   []int
	PendingMigrations []Migration
	MissingTables     []string
}

type tabler interface {
	TableName() string
}

// Ready reports whether every catalog, content and access table exists and no migration is pending.
func (s *SchemaStatus) Ready() bool {
	return len(s.PendingMigrations) == 0 && len(s.MissingTables) == 0
}

// Shared and production databases never get AutoMigrate unless the operator opts in.
func sharedEnvironment(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "production", "prod", "staging", "stage":
		return true
	}
	return false
}

// PlanSchema resolves DB_SCHEMA_MODE against the environment.
func PlanSchema(cfg *config.Config) (SchemaPlan, error) {
	plan := SchemaPlan{
		Mode:        SchemaMode(strings.ToLower(strings.TrimSpace(cfg.DBSchemaMode))),
		Environment: cfg.Env,
	}
	if plan.Mode == "" {
		plan.Mode = SchemaModeHybrid
	}
	shared := sharedEnvironment(cfg.Env)

	switch plan.Mode {
	case SchemaModeSQL:
		plan.SQL = true
	case SchemaModeAuto:
		if shared && !cfg.DBAutoMigrateAllowDestructive {
			return plan, fmt.Errorf("refusing DB_SCHEMA_MODE=auto in %q without DB_AUTOMIGRATE_ALLOW_DESTRUCTIVE=true", cfg.Env)
		}
		plan.AutoMigrate = true
	case SchemaModeHybrid:
		plan.SQL = true
		plan.AutoMigrate = !shared
	default:
		return plan, fmt.Errorf("unsupported DB_SCHEMA_MODE %q", plan.Mode)
	}
	return plan, nil
}

// AutoMigrate creates or alters the tables of every persistent travel model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(PersistentModels()...)
}

// ApplySchema runs the plan for cfg and fails if any travel table is still absent afterwards.
func ApplySchema(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return err
	}

	if plan.SQL {
		if err := RunMigrations(ctx, db); err != nil {
			return fmt.Errorf("run sql migrations: %w", err)
		}
	}

	if plan.AutoMigrate {
		if plan.Mode == SchemaModeAuto && cfg.DBAutoMigrateAllowDestructive {
			observability.Logger.WarnContext(ctx, "AutoMigrate enabled on a shared travel database",
				slog.String("env", cfg.Env))
		}
		observability.Logger.InfoContext(ctx, "Migrating travel models",
			slog.String("mode", string(plan.Mode)),
			slog.String("env", cfg.Env),
			slog.Int("models", len(PersistentModels())))
		if err := AutoMigrate(db.WithContext(ctx)); err != nil {
			return fmt.Errorf("auto-migrate: %w", err)
		}
	}

	if missing := missingTables(db.WithContext(ctx)); len(missing) > 0 {
		return fmt.Errorf("schema incomplete, missing tables: %s", strings.Join(missing, ", "))
	}
	return nil
}

// GetSchemaStatus reports the plan for cfg with applied and pending migrations and absent tables.
func GetSchemaStatus(ctx context.Context, db *gorm.DB, cfg *config.Config) (*SchemaStatus, error) {
	plan, err := PlanSchema(cfg)
	if err != nil {
		return nil, err
	}
	status := &SchemaStatus{
		SchemaPlan:    plan,
		MissingTables: missingTables(db.WithContext(ctx)),
	}
	if !plan.SQL {
		return status, nil
	}

	applied, err := NewMigrationStore(db).Applied(ctx)
	if err != nil {
		return nil, err
	}
	status.AppliedVersions = applied
	status.PendingMigrations = pendingMigrations(applied, GetMigrations())
	return status, nil
}

func missingTables(db *gorm.DB) []string {
	var missing []string
	for _, model := range PersistentModels() {
		if !db.Migrator().HasTable(model) {
			missing = append(missing, tableName(model))
		}
	}
	return missing
}

func tableName(model interface{}) string {
	if t, ok := model.(tabler); ok {
		return t.TableName()
	}
	return fmt.Sprintf("%T", model)
}
