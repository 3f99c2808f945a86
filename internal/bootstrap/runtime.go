// Package bootstrap connects the storage backends selected by configuration.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"devconnect/internal/cache"
	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/repository"
)

// Runtime holds the initialized stores and the connections behind them.
type Runtime struct {
	Posts repository.PostRepository
	// Users is the profile lookup used by the post service, wrapped in the
	// Redis profile cache when Redis is reachable.
	Users repository.UserRepository
	// UserStore is the uncached store, used for seeding.
	UserStore repository.UserStore
	Redis     *redis.Client

	db    *gorm.DB
	mongo *mongo.Database
}

// InitRuntime connects the configured post store and Redis. Redis is
// optional: an unreachable server leaves Redis nil and disables the profile
// cache and event publishing.
func InitRuntime(ctx context.Context, cfg *config.Config) (*Runtime, error) {
	rt := &Runtime{}

	switch cfg.DBDriver {
	case config.DriverMongo:
		db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("mongo connection failed: %w", err)
		}
		// Indexes follow the same policy as the SQL schema.
		if database.ShouldMigrate(cfg) {
			if err := database.EnsureMongoIndexes(ctx, db); err != nil {
				_ = db.Client().Disconnect(ctx)
				return nil, fmt.Errorf("mongo index setup failed: %w", err)
			}
		}
		rt.mongo = db
		rt.Posts = repository.NewMongoPostRepository(db)
		rt.UserStore = repository.NewMongoUserRepository(db)
	default:
		db, err := database.Connect(cfg)
		if err != nil {
			return nil, fmt.Errorf("database connection failed: %w", err)
		}
		rt.db = db
		rt.Posts = repository.NewPostRepository(db)
		rt.UserStore = repository.NewUserRepository(db)
	}

	if cfg.RedisURL != "" {
		rt.Redis = cache.Connect(ctx, cfg.RedisURL)
	}
	rt.Users = repository.NewCachedUserRepository(rt.UserStore, cache.New(rt.Redis), cfg.ProfileCacheTTL)

	slog.Info("runtime initialized",
		slog.String("driver", cfg.DBDriver),
		slog.Bool("redis", rt.Redis != nil),
	)
	return rt, nil
}

// Close releases every connection held by the runtime.
func (rt *Runtime) Close(ctx context.Context) error {
	var errs []error
	if rt.db != nil {
		if sqlDB, err := rt.db.DB(); err != nil {
			errs = append(errs, err)
		} else if err := sqlDB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close database: %w", err))
		}
	}
	if rt.mongo != nil {
		if err := rt.mongo.Client().Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongo: %w", err))
		}
	}
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
	}
	return errors.Join(errs...)
}
