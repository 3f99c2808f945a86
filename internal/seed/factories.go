// Package seed creates demo users and posts for local development. The
// generated content goes through the post service so that seeded data obeys
// the same rules as data created over HTTP.
package seed

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/service"
)

// DefaultPassword is the password of every seeded user.
const DefaultPassword = "password123"

// Options controls how much data Run creates.
type Options struct {
	Users int
	Posts int
	// MaxLikes and MaxComments bound the engagement generated per post.
	MaxLikes    int
	MaxComments int
	// Seed makes the generated content reproducible when non-zero.
	Seed int64
}

// Result summarizes a seeding run.
type Result struct {
	Users    []*models.User
	Posts    int
	Likes    int
	Comments int
}

// Factory builds users and posts and persists them.
type Factory struct {
	users    repository.UserStore
	posts    *service.PostService
	faker    *gofakeit.Faker
	rnd      *rand.Rand
	password string
}

// NewFactory returns a factory writing users to users and posts through posts.
func NewFactory(users repository.UserStore, posts *service.PostService, seed int64) (*Factory, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}
	return &Factory{
		users:    users,
		posts:    posts,
		faker:    gofakeit.New(seed),
		rnd:      rand.New(rand.NewSource(seed)),
		password: string(hashed),
	}, nil
}

// CreateUser persists a generated user. Overrides may adjust it before saving.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		ID:       uuid.NewString(),
		Name:     f.faker.Name(),
		Email:    f.faker.Email(),
		Avatar:   fmt.Sprintf("https://i.pravatar.cc/150?u=%s", f.faker.UUID()),
		Password: f.password,
	}
	for _, override := range overrides {
		override(user)
	}
	if err := f.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Email, err)
	}
	return user, nil
}

// CreatePost publishes a generated post as author.
func (f *Factory) CreatePost(ctx context.Context, author *models.User) (*models.Post, error) {
	return f.posts.CreatePost(ctx, service.CreatePostInput{
		UserID: author.ID,
		Text:   f.faker.Paragraph(1, f.rnd.Intn(3)+1, 12, " "),
	})
}

// Engage likes and comments on post from a random subset of users and
// returns how many likes and comments were added.
func (f *Factory) Engage(ctx context.Context, post *models.Post, users []*models.User, maxLikes, maxComments int) (likes, comments int, err error) {
	if len(users) == 0 {
		return 0, 0, nil
	}

	for _, i := range f.rnd.Perm(len(users))[:min(f.rnd.Intn(maxLikes+1), len(users))] {
		if _, err := f.posts.LikePost(ctx, users[i].ID, post.ID); err != nil {
			return likes, comments, fmt.Errorf("like post %s: %w", post.ID, err)
		}
		likes++
	}

	for n := f.rnd.Intn(maxComments + 1); n > 0; n-- {
		commenter := users[f.rnd.Intn(len(users))]
		_, err := f.posts.AddComment(ctx, service.AddCommentInput{
			UserID: commenter.ID,
			PostID: post.ID,
			Text:   f.faker.Sentence(f.rnd.Intn(10) + 3),
		})
		if err != nil {
			return likes, comments, fmt.Errorf("comment on post %s: %w", post.ID, err)
		}
		comments++
	}
	return likes, comments, nil
}

// Run creates opts.Users users and opts.Posts posts with random engagement.
func Run(ctx context.Context, users repository.UserStore, posts *service.PostService, opts Options) (*Result, error) {
	if opts.Users <= 0 {
		return nil, fmt.Errorf("seed needs at least one user, got %d", opts.Users)
	}
	if opts.MaxLikes < 0 || opts.MaxComments < 0 {
		return nil, fmt.Errorf("engagement bounds must not be negative")
	}

	f, err := NewFactory(users, posts, opts.Seed)
	if err != nil {
		return nil, err
	}

	res := &Result{Users: make([]*models.User, 0, opts.Users)}
	for i := 0; i < opts.Users; i++ {
		u, err := f.CreateUser(ctx)
		if err != nil {
			return nil, err
		}
		res.Users = append(res.Users, u)
	}
	slog.Info("seeded users", slog.Int("count", len(res.Users)))

	for i := 0; i < opts.Posts; i++ {
		author := res.Users[f.rnd.Intn(len(res.Users))]
		post, err := f.CreatePost(ctx, author)
		if err != nil {
			return nil, fmt.Errorf("create post for %s: %w", author.ID, err)
		}
		res.Posts++

		likes, comments, err := f.Engage(ctx, post, res.Users, opts.MaxLikes, opts.MaxComments)
		if err != nil {
			return nil, err
		}
		res.Likes += likes
		res.Comments += comments
	}
	slog.Info("seeded posts",
		slog.Int("posts", res.Posts),
		slog.Int("likes", res.Likes),
		slog.Int("comments", res.Comments),
	)
	return res, nil
}
