package seed

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/models"
	"devconnect/internal/repository"
	"devconnect/internal/service"
)

func setupStores(t *testing.T) (*gorm.DB, repository.UserStore, repository.PostRepository, *service.PostService) {
	t.Helper()
	db, err := database.Connect(&config.Config{
		Env:        "test",
		DBDriver:   config.DriverSQLite,
		SQLitePath: ":memory:",
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	return db, users, posts, service.NewPostService(posts, users)
}

func TestRun(t *testing.T) {
	db, users, posts, svc := setupStores(t)
	ctx := context.Background()

	res, err := Run(ctx, users, svc, Options{Users: 4, Posts: 6, MaxLikes: 3, MaxComments: 2, Seed: 42})
	require.NoError(t, err)
	assert.Len(t, res.Users, 4)
	assert.Equal(t, 6, res.Posts)

	var userCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	assert.EqualValues(t, 4, userCount)

	stored, err := posts.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 6)

	likes, comments := 0, 0
	for _, p := range stored {
		seen := make(map[string]bool)
		for _, l := range p.Likes {
			assert.False(t, seen[l.UserID], "duplicate like on %s", p.ID)
			seen[l.UserID] = true
		}
		likes += len(p.Likes)
		comments += len(p.Comments)
	}
	assert.Equal(t, res.Likes, likes)
	assert.Equal(t, res.Comments, comments)
}

func TestRunValidatesOptions(t *testing.T) {
	_, users, _, svc := setupStores(t)
	ctx := context.Background()

	_, err := Run(ctx, users, svc, Options{Users: 0, Posts: 1})
	assert.Error(t, err)

	_, err = Run(ctx, users, svc, Options{Users: 1, MaxLikes: -1})
	assert.Error(t, err)
}

func TestCreateUserHashesPassword(t *testing.T) {
	_, users, _, svc := setupStores(t)
	f, err := NewFactory(users, svc, 7)
	require.NoError(t, err)

	u, err := f.CreateUser(context.Background(), func(u *models.User) {
		u.Name = "Fixed Name"
	})
	require.NoError(t, err)
	assert.Equal(t, "Fixed Name", u.Name)
	assert.NotEqual(t, DefaultPassword, u.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(DefaultPassword)))

	profile, err := users.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Fixed Name", profile.Name)
}

func TestEngageWithoutUsers(t *testing.T) {
	_, users, _, svc := setupStores(t)
	f, err := NewFactory(users, svc, 1)
	require.NoError(t, err)

	likes, comments, err := f.Engage(context.Background(), &models.Post{ID: "x"}, nil, 5, 5)
	require.NoError(t, err)
	assert.Zero(t, likes)
	assert.Zero(t, comments)
}
