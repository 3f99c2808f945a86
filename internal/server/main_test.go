package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"devconnect/internal/auth"
	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/models"
	"devconnect/internal/repository"
)

const testSecret = "server-test-secret-0123456789abcdef"

type testEnv struct {
	app    *fiber.App
	server *Server
	posts  repository.PostRepository
	tokens map[string]string
}

func newTestEnv(t *testing.T, rdb *redis.Client) *testEnv {
	t.Helper()
	cfg := &config.Config{
		Env:            "test",
		Port:           "0",
		JWTSecret:      testSecret,
		DBDriver:       config.DriverSQLite,
		SQLitePath:     ":memory:",
		AllowedOrigins: "*",
	}

	db, err := database.Connect(cfg)
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	users := repository.NewUserRepository(db)
	issuer := auth.NewIssuer(testSecret)
	tokens := make(map[string]string)
	for _, u := range []models.User{
		{ID: "user-a", Name: "Alice", Email: "a@example.com", Avatar: "//avatar/a"},
		{ID: "user-b", Name: "Bob", Email: "b@example.com", Avatar: "//avatar/b"},
	} {
		require.NoError(t, users.Create(context.Background(), &u))
		token, err := issuer.Issue(u.ID, time.Hour)
		require.NoError(t, err)
		tokens[u.ID] = token
	}

	posts := repository.NewPostRepository(db)
	s := NewServer(cfg, Deps{Posts: posts, Users: users, Redis: rdb})
	return &testEnv{app: s.App(), server: s, posts: posts, tokens: tokens}
}

type response struct {
	status int
	body   []byte
}

func (r response) decode(t *testing.T, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, v), "body: %s", r.body)
}

func (r response) errorMsg(t *testing.T) string {
	t.Helper()
	var body models.ErrorResponse
	r.decode(t, &body)
	require.Len(t, body.Errors, 1)
	return body.Errors[0].Msg
}

func (e *testEnv) do(t *testing.T, method, path, user string, body any) response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if user != "" {
		req.Header.Set("x-auth-token", e.tokens[user])
	}

	resp, err := e.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return response{status: resp.StatusCode, body: raw}
}
