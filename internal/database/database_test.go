package database

import (
	"context"
	"testing"
	"testing/fstest"

	"foodgram/internal/config"
	"foodgram/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openSQLite(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	return db
}

func TestConfigurePool(t *testing.T) {
	db := openSQLite(t)

	cfg := &config.Config{
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           20,
		DBConnMaxLifetimeMinutes: 15,
	}
	require.NoError(t, configurePool(db, cfg))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 10, sqlDB.Stats().MaxOpenConnections)
}

func TestConfigurePoolDefaults(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, configurePool(db, &config.Config{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 25, sqlDB.Stats().MaxOpenConnections)
}

func TestPersistentModels(t *testing.T) {
	var hasFavorite, hasSubscription bool
	for _, model := range PersistentModels() {
		switch model.(type) {
		case *models.Favorite:
			hasFavorite = true
		case *models.Subscription:
			hasSubscription = true
		}
	}
	assert.True(t, hasFavorite, "PersistentModels should include Favorite")
	assert.True(t, hasSubscription, "PersistentModels should include Subscription")
}

func TestMigrateCreatesTables(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"users", "tags", "ingredients", "recipes", "recipe_tags", "ingredient_quantities", "favorites", "cart_items", "subscriptions"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestGetReadDBDefaultsToNil(t *testing.T) {
	assert.Nil(t, GetReadDB())
}

func TestDSNDefaultsSSLMode(t *testing.T) {
	got := dsn("db", "5432", "u", "p", "foodgram", "")
	assert.Contains(t, got, "sslmode=disable")
	assert.Contains(t, got, "dbname=foodgram")
}

func TestEmbeddedMigrationsRegistered(t *testing.T) {
	all := GetMigrations()
	require.NotEmpty(t, all)
	assert.Equal(t, 1, all[0].Version)
	assert.Equal(t, "init_schema", all[0].Name)
	assert.Contains(t, all[0].UpScript, "CREATE TABLE IF NOT EXISTS subscriptions")
	assert.Contains(t, all[0].DownScript, "DROP TABLE IF EXISTS users")
	assert.Equal(t, "000001_init_schema", all[0].String())
	assert.NotNil(t, GetMigrationByVersion(1))
	assert.Nil(t, GetMigrationByVersion(999))
}

func TestLoadMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000002_second.up.sql":   {Data: []byte("CREATE TABLE b (id INTEGER)")},
		"m/000002_second.down.sql": {Data: []byte("DROP TABLE b")},
		"m/000001_first.up.sql":    {Data: []byte("CREATE TABLE a (id INTEGER)")},
		"m/000001_first.down.sql":  {Data: []byte("DROP TABLE a")},
		"m/README.md":              {Data: []byte("ignored")},
		"m/bad.up.sql":             {Data: []byte("ignored")},
	}

	got, err := LoadMigrations(fsys, "m")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "second", got[1].Name)
}

func TestLoadMigrationsMissingDown(t *testing.T) {
	fsys := fstest.MapFS{
		"m/000001_first.up.sql": {Data: []byte("CREATE TABLE a (id INTEGER)")},
	}
	_, err := LoadMigrations(fsys, "m")
	require.Error(t, err)
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	registered := []Migration{
		{Version: 1, Name: "a", UpScript: "CREATE TABLE a (id INTEGER)", DownScript: "DROP TABLE a"},
		{Version: 2, Name: "b", UpScript: "CREATE TABLE b (id INTEGER)", DownScript: "DROP TABLE b"},
	}

	require.NoError(t, runMigrations(ctx, db, registered))
	require.NoError(t, runMigrations(ctx, db, registered))

	applied, err := NewMigrationStore(db).GetAppliedMigrations(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, applied)
	assert.True(t, db.Migrator().HasTable("b"))
}

func TestRunMigrationsRejectsUnknownVersions(t *testing.T) {
	db := openSQLite(t)
	ctx := context.Background()
	require.NoError(t, ensureMigrationLog(ctx, db))
	require.NoError(t, db.Create(&MigrationLog{Version: 42, Name: "future"}).Error)

	err := runMigrations(ctx, db, []Migration{{Version: 1, Name: "a", UpScript: "SELECT 1"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "000042")
}

func TestGetMigrationStatusWithoutLogTable(t *testing.T) {
	db := openSQLite(t)
	status, err := GetMigrationStatus(context.Background(), db)
	require.NoError(t, err)
	assert.Empty(t, status.AppliedVersions)
	assert.Len(t, status.PendingMigrations, len(GetMigrations()))
}

func TestRollbackMigrationNotApplied(t *testing.T) {
	db := openSQLite(t)
	require.NoError(t, ensureMigrationLog(context.Background(), db))
	err := RollbackMigration(context.Background(), db, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "has not been applied")
}
