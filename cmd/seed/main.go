// Command seed fills the configured store with demo users, posts, likes and
// comments.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"devconnect/internal/auth"
	"devconnect/internal/bootstrap"
	"devconnect/internal/config"
	"devconnect/internal/middleware"
	"devconnect/internal/seed"
	"devconnect/internal/service"
)

func main() {
	numUsers := flag.Int("users", 10, "Number of users to create")
	numPosts := flag.Int("posts", 40, "Number of posts to create")
	maxLikes := flag.Int("max-likes", 5, "Maximum likes per post")
	maxComments := flag.Int("max-comments", 3, "Maximum comments per post")
	randSeed := flag.Int64("seed", 0, "Random seed; 0 picks one")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of the printed dev token")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production environment")
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	if *randSeed == 0 {
		*randSeed = time.Now().UnixNano()
	}

	ctx := context.Background()
	rt, err := bootstrap.InitRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize runtime: %v", err)
	}
	defer func() { _ = rt.Close(ctx) }()

	res, err := seed.Run(ctx, rt.UserStore, service.NewPostService(rt.Posts, rt.Users), seed.Options{
		Users:       *numUsers,
		Posts:       *numPosts,
		MaxLikes:    *maxLikes,
		MaxComments: *maxComments,
		Seed:        *randSeed,
	})
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	first := res.Users[0]
	token, err := auth.NewIssuer(cfg.JWTSecret).Issue(first.ID, *tokenTTL)
	if err != nil {
		log.Fatalf("Failed to issue dev token: %v", err)
	}

	log.Printf("Seeded %d users, %d posts, %d likes, %d comments", len(res.Users), res.Posts, res.Likes, res.Comments)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
	log.Printf("Token for %s (%s): %s", first.Name, first.Email, token)
}
