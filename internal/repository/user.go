package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"

	"devconnect/internal/cache"
	"devconnect/internal/models"
	"devconnect/internal/observability"
)

// ErrUserNotFound is returned when the directory has no record for an id.
var ErrUserNotFound = errors.New("user not found")

// UserRepository is the read side of the user directory.
type UserRepository interface {
	GetProfile(ctx context.Context, id string) (*models.Profile, error)
}

// UserStore adds the writes used by the seed tool.
type UserStore interface {
	UserRepository
	Create(ctx context.Context, user *models.User) error
}

type userRepository struct {
	db *gorm.DB
}

// NewUserRepository returns a UserStore backed by gorm.
func NewUserRepository(db *gorm.DB) UserStore {
	return &userRepository{db: db}
}

func (r *userRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	defer observability.ObserveStoreQuery(r.db.Dialector.Name(), "get_profile", time.Now())

	var user models.User
	err := r.db.WithContext(ctx).Select("id", "name", "avatar").Where("id = ?", id).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("select user %s: %w", id, err)
	}
	return user.Profile(), nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

const usersCollection = "users"

type mongoUserRepository struct {
	coll *mongo.Collection
}

// NewMongoUserRepository returns a UserStore backed by the users collection of db.
func NewMongoUserRepository(db *mongo.Database) UserStore {
	return &mongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *mongoUserRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	defer observability.ObserveStoreQuery(mongoStore, "get_profile", time.Now())

	var profile models.Profile
	err := r.coll.FindOne(ctx, idFilter(id)).Decode(&profile)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %s: %w", id, err)
	}
	return &profile, nil
}

func (r *mongoUserRepository) Create(ctx context.Context, user *models.User) error {
	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

type cachedUserRepository struct {
	inner UserRepository
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachedUserRepository wraps inner with a Redis cache-aside layer. Unknown
// users are not cached.
func NewCachedUserRepository(inner UserRepository, c *cache.Cache, ttl time.Duration) UserRepository {
	if !c.Enabled() {
		return inner
	}
	return &cachedUserRepository{inner: inner, cache: c, ttl: ttl}
}

func (r *cachedUserRepository) GetProfile(ctx context.Context, id string) (*models.Profile, error) {
	var profile models.Profile
	hit, err := r.cache.Aside(ctx, cache.ProfileKey(id), &profile, r.ttl, func() error {
		p, err := r.inner.GetProfile(ctx, id)
		if err != nil {
			return err
		}
		profile = *p
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := "miss"
	if hit {
		result = "hit"
	}
	observability.ProfileCacheResults.WithLabelValues(result).Inc()
	return &profile, nil
}
