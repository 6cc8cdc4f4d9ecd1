package database

import (
	"context"
	"errors"
	"testing"

	"travelcore/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestPlanSchema(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Config
		mode    SchemaMode
		runSQL  bool
		runAuto bool
		wantErr bool
	}{
		{"hybrid development", config.Config{Env: "development"}, SchemaModeHybrid, true, true, false},
		{"hybrid production", config.Config{Env: "production", DBSchemaMode: "hybrid"}, SchemaModeHybrid, true, false, false},
		{"sql only", config.Config{Env: "development", DBSchemaMode: "sql"}, SchemaModeSQL, true, false, false},
		{"auto development", config.Config{Env: "development", DBSchemaMode: "auto"}, SchemaModeAuto, false, true, false},
		{"auto staging refused", config.Config{Env: "staging", DBSchemaMode: "auto"}, "", false, false, true},
		{"auto prod allowed", config.Config{Env: "prod", DBSchemaMode: "AUTO", DBAutoMigrateAllowDestructive: true}, SchemaModeAuto, false, true, false},
		{"unknown", config.Config{DBSchemaMode: "yolo"}, "", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, err := PlanSchema(&tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.mode, plan.Mode)
			assert.Equal(t, tt.runSQL, plan.SQL)
			assert.Equal(t, tt.runAuto, plan.AutoMigrate)
		})
	}
}

func TestApplySchema_AutoCreatesTravelTables(t *testing.T) {
	db := openSQLite(t)
	cfg := &config.Config{Env: "development", DBSchemaMode: "auto"}

	before, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.False(t, before.Ready())
	assert.Len(t, before.MissingTables, len(PersistentModels()))
	assert.Contains(t, before.MissingTables, "wards")

	require.NoError(t, ApplySchema(context.Background(), db, cfg))

	after, err := GetSchemaStatus(context.Background(), db, cfg)
	require.NoError(t, err)
	assert.Empty(t, after.MissingTables)
	assert.True(t, after.Ready())
}

func TestMigrationStore_ApplyAndRevert(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, db.AutoMigrate(&SchemaVersion{}))
	store := NewMigrationStore(db)
	ctx := context.Background()

	trips := Migration{
		Version:    2,
		Name:       "trips",
		UpScript:   "CREATE TABLE trips (id INTEGER PRIMARY KEY)",
		DownScript: "DROP TABLE trips",
	}
	require.NoError(t, store.Apply(ctx, trips))
	assert.True(t, db.Migrator().HasTable("trips"))
	applied, err := store.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, applied)

	broken := Migration{Version: 3, Name: "broken", UpScript: "CREATE TABLE itineraries (id INTEGER); CREATE TABL oops"}
	require.Error(t, store.Apply(ctx, broken))
	applied, err = store.Applied(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{2}, applied)

	require.NoError(t, store.Revert(ctx, trips))
	assert.False(t, db.Migrator().HasTable("trips"))
	applied, err = store.Applied(ctx)
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestMigrationStore_AppliedWithoutLedger(t *testing.T) {
	applied, err := NewMigrationStore(openSQLite(t)).Applied(context.Background())
	require.NoError(t, err)
	assert.Empty(t, applied)
}

func TestEmbeddedMigrations(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init", all[0].Name)
	assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS community_post_reactions")
	assert.Contains(t, all[0].UpScript, "idx_post_reaction_target")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS continents")
	assert.Equal(t, "000001_init", all[0].String())

	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

type stubMigrationStore struct {
	applied    []int
	appliedNow []int
	reverted   []int
	failOn     int
}

func (s *stubMigrationStore) Applied(context.Context) ([]int, error) {
	return s.applied, nil
}

func (s *stubMigrationStore) Apply(_ context.Context, m Migration) error {
	if m.Version == s.failOn {
		return errors.New("apply failed")
	}
	s.appliedNow = append(s.appliedNow, m.Version)
	return nil
}

func (s *stubMigrationStore) Revert(_ context.Context, m Migration) error {
	s.reverted = append(s.reverted, m.Version)
	return nil
}

func TestApplyPending(t *testing.T) {
	registered := []Migration{{Version: 1, Name: "init"}, {Version: 2, Name: "extra"}, {Version: 3, Name: "more"}}

	t.Run("skips applied", func(t *testing.T) {
		store := &stubMigrationStore{applied: []int{1}}
		require.NoError(t, applyPending(context.Background(), store, registered))
		assert.Equal(t, []int{2, 3}, store.appliedNow)
	})

	t.Run("nothing pending", func(t *testing.T) {
		store := &stubMigrationStore{applied: []int{1, 2, 3}}
		require.NoError(t, applyPending(context.Background(), store, registered))
		assert.Empty(t, store.appliedNow)
	})

	t.Run("stops at first failure", func(t *testing.T) {
		store := &stubMigrationStore{failOn: 2}
		assert.Error(t, applyPending(context.Background(), store, registered))
		assert.Equal(t, []int{1}, store.appliedNow)
	})

	t.Run("rejects versions from a newer build", func(t *testing.T) {
		store := &stubMigrationStore{applied: []int{1, 7}}
		err := applyPending(context.Background(), store, registered)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "000007")
		assert.Empty(t, store.appliedNow)
	})
}

func TestRollback(t *testing.T) {
	t.Run("reverts applied version", func(t *testing.T) {
		store := &stubMigrationStore{applied: []int{1}}
		require.NoError(t, rollback(context.Background(), store, 1))
		assert.Equal(t, []int{1}, store.reverted)
	})

	t.Run("not applied", func(t *testing.T) {
		store := &stubMigrationStore{}
		err := rollback(context.Background(), store, 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "000001_init")
		assert.Empty(t, store.reverted)
	})

	t.Run("unknown version", func(t *testing.T) {
		assert.Error(t, rollback(context.Background(), &stubMigrationStore{applied: []int{99}}, 99))
	})
}

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), GormConfig())
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}
