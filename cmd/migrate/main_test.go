package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnect/internal/config"
	"devconnect/internal/database"
)

func productionSQLite(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Env:        "production",
		DBDriver:   config.DriverSQLite,
		SQLitePath: filepath.Join(t.TempDir(), "migrate.db"),
	}
}

func TestRun_StatusThenAuto(t *testing.T) {
	cfg := productionSQLite(t)
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, run(ctx, cfg, "status", &out))
	assert.Contains(t, out.String(), "ready=false")
	assert.Contains(t, out.String(), "missing table: posts")
	assert.Contains(t, out.String(), "missing table: users")

	out.Reset()
	require.NoError(t, run(ctx, cfg, "auto", &out))
	assert.Contains(t, out.String(), "automigrations applied")
	assert.Contains(t, out.String(), "ready=true")

	// The schema persists for the server, which does not migrate in production.
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	status, err := database.GetSchemaStatus(db)
	require.NoError(t, err)
	assert.True(t, status.Ready())
}

func TestRun_StatusDoesNotMigrateOutsideProduction(t *testing.T) {
	cfg := productionSQLite(t)
	cfg.Env = "development"

	var out bytes.Buffer
	require.NoError(t, run(context.Background(), cfg, "status", &out))
	assert.Contains(t, out.String(), "ready=false")
}

func TestRun_UnknownCommand(t *testing.T) {
	err := run(context.Background(), productionSQLite(t), "down", &bytes.Buffer{})
	assert.ErrorContains(t, err, "usage")
}
