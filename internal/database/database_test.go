package database

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"devconnect/internal/config"
)

func TestPostgresDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost: "db", DBPort: "5433", DBUser: "app", DBPassword: "secret", DBName: "posts",
	}
	assert.Equal(t, "host=db port=5433 user=app password=secret dbname=posts sslmode=disable", PostgresDSN(cfg))

	cfg.DBSSLMode = "require"
	assert.Contains(t, PostgresDSN(cfg), "sslmode=require")
}

func TestConnect_SQLiteMigrates(t *testing.T) {
	cfg := &config.Config{Env: "test", DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}

	db, err := Connect(cfg)
	require.NoError(t, err)

	assert.True(t, db.Migrator().HasTable("posts"))
	assert.True(t, db.Migrator().HasTable("users"))
}

func TestConnect_ProductionSkipsMigrationByDefault(t *testing.T) {
	cfg := &config.Config{Env: "production", DBDriver: config.DriverSQLite, SQLitePath: ":memory:"}

	db, err := Connect(cfg)
	require.NoError(t, err)

	status, err := GetSchemaStatus(db)
	require.NoError(t, err)
	assert.False(t, status.Ready())
	assert.Equal(t, []string{"posts", "users"}, status.Missing())

	require.NoError(t, Migrate(db))
	status, err = GetSchemaStatus(db)
	require.NoError(t, err)
	assert.True(t, status.Ready())
	assert.Empty(t, status.Missing())
}

func TestConnect_ProductionAutoMigrate(t *testing.T) {
	cfg := &config.Config{
		Env:           "production",
		DBDriver:      config.DriverSQLite,
		SQLitePath:    ":memory:",
		DBAutoMigrate: true,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)
	assert.True(t, db.Migrator().HasTable("posts"))
	assert.True(t, db.Migrator().HasTable("users"))
}

func TestShouldMigrate(t *testing.T) {
	tests := []struct {
		env  string
		auto bool
		want bool
	}{
		{"development", false, true},
		{"test", false, true},
		{"production", false, false},
		{"prod", false, false},
		{"production", true, true},
	}
	for _, tt := range tests {
		got := ShouldMigrate(&config.Config{Env: tt.env, DBAutoMigrate: tt.auto})
		assert.Equal(t, tt.want, got, "env=%s auto=%v", tt.env, tt.auto)
	}
}

func TestEnsureMongoIndexes(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("creates date index", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		require.NoError(mt, EnsureMongoIndexes(context.Background(), mt.DB))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "createIndexes", evt.CommandName)
		assert.Equal(mt, "posts", evt.Command.Lookup("createIndexes").StringValue())
	})

	mt.Run("failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{
			Code: 13, Name: "Unauthorized", Message: "not authorized",
		}))
		assert.Error(mt, EnsureMongoIndexes(context.Background(), mt.DB))
	})
}

func TestConnect_RejectsMongoDriver(t *testing.T) {
	_, err := Connect(&config.Config{DBDriver: config.DriverMongo})
	assert.Error(t, err)
}

func TestCustomGormLogger_Trace(t *testing.T) {
	var buf bytes.Buffer
	l := NewGormLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx := context.Background()
	sql := func() (string, int64) { return "SELECT 1", 1 }

	l.Trace(ctx, time.Now(), sql, gorm.ErrRecordNotFound)
	assert.Empty(t, buf.String())

	l.Trace(ctx, time.Now(), sql, errors.New("syntax error"))
	assert.Contains(t, buf.String(), "GORM query error")

	buf.Reset()
	l.Trace(ctx, time.Now().Add(-time.Second), sql, nil)
	assert.Contains(t, buf.String(), "GORM slow query")

	buf.Reset()
	l.LogMode(logger.Silent).Trace(ctx, time.Now(), sql, errors.New("ignored"))
	assert.Empty(t, buf.String())
}
