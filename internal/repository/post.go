// Package repository provides the post store and the user directory.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"devconnect/internal/models"
	"devconnect/internal/observability"
)

// ErrPostNotFound is returned by writes that target a post which no longer exists.
var ErrPostNotFound = errors.New("post not found")

// pgInvalidTextRepresentation is raised by postgres for a malformed uuid literal.
const pgInvalidTextRepresentation = "22P02"

// LookupStatus tags the result of a post lookup.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupFailed
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// PostLookup is the outcome of FindByID. Post is set only for LookupFound and
// Err only for LookupFailed.
type PostLookup struct {
	Status LookupStatus
	Post   *models.Post
	Err    error
}

// Found wraps a loaded post.
func Found(post *models.Post) PostLookup {
	return PostLookup{Status: LookupFound, Post: post}
}

// NotFound reports an absent post. Malformed ids are reported the same way.
func NotFound() PostLookup {
	return PostLookup{Status: LookupNotFound}
}

// Failed reports a store failure.
func Failed(err error) PostLookup {
	return PostLookup{Status: LookupFailed, Err: err}
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	FindByID(ctx context.Context, id string) PostLookup
	// FindAll returns every post, newest first.
	FindAll(ctx context.Context) ([]*models.Post, error)
	// Save persists the likes and comments of an existing post.
	Save(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

// postRepository implements PostRepository on gorm.
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) store() string {
	return r.db.Dialector.Name()
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.ObserveStoreQuery(r.store(), "create_post", time.Now())

	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (r *postRepository) FindByID(ctx context.Context, id string) PostLookup {
	defer observability.ObserveStoreQuery(r.store(), "find_post", time.Now())

	if _, err := uuid.Parse(id); err != nil {
		return NotFound()
	}

	var post models.Post
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	switch {
	case err == nil:
		return Found(&post)
	case errors.Is(err, gorm.ErrRecordNotFound), isMalformedID(err):
		return NotFound()
	default:
		return Failed(fmt.Errorf("select post %s: %w", id, err))
	}
}

func (r *postRepository) FindAll(ctx context.Context) ([]*models.Post, error) {
	defer observability.ObserveStoreQuery(r.store(), "list_posts", time.Now())

	posts := make([]*models.Post, 0)
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Save(ctx context.Context, post *models.Post) error {
	defer observability.ObserveStoreQuery(r.store(), "save_post", time.Now())

	post.Normalize()
	res := r.db.WithContext(ctx).Model(post).Select("Likes", "Comments").Updates(post)
	if res.Error != nil {
		return fmt.Errorf("update post %s: %w", post.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
	defer observability.ObserveStoreQuery(r.store(), "delete_post", time.Now())

	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Post{})
	if res.Error != nil {
		return fmt.Errorf("delete post %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func isMalformedID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresentation
}
