package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"owlistic-notes/blocknotes/config"
	"owlistic-notes/blocknotes/models"
)

func TestClose(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	assert.NoError(t, err)
	database := &Database{DB: db}

	assert.NotPanics(t, func() {
		database.Close()
	})
}

func TestPing(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	database := &Database{DB: db}
	assert.NoError(t, database.Ping(context.Background()))

	database.Close()
	assert.Error(t, database.Ping(context.Background()))

	assert.Error(t, (&Database{}).Ping(context.Background()))
}

func TestDialector(t *testing.T) {
	d, err := Dialector(config.Config{DBDriver: "sqlite", DBSQLitePath: ":memory:"})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", d.Name())

	d, err = Dialector(config.Config{DBDriver: "postgres", DBHost: "db", DBPort: "5432"})
	require.NoError(t, err)
	assert.Equal(t, "postgres", d.Name())

	_, err = Dialector(config.Config{DBDriver: "oracle"})
	assert.Error(t, err)
}

func TestSetupSQLiteRunsMigrations(t *testing.T) {
	cfg := config.Config{
		DBDriver:       "sqlite",
		DBSQLitePath:   filepath.Join(t.TempDir(), "blocknotes.db"),
		DBMaxIdleConns: 1,
		DBMaxOpenConns: 1,
		AppEnv:         "test",
	}

	database, err := Setup(cfg)
	require.NoError(t, err)
	defer database.Close()

	for _, table := range []string{"notes", "blocks", "events"} {
		assert.True(t, database.DB.Migrator().HasTable(table), table)
	}
	assert.True(t, database.DB.Migrator().HasColumn(&models.BlockRecord{}, "table_data"))
}
