// Command migrate applies or inspects the schema of the configured store.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"devconnect/internal/config"
	"devconnect/internal/database"
	"devconnect/internal/middleware"
)

func main() {
	flag.Parse()
	if flag.NArg() < 1 {
		log.Fatal(usage())
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	middleware.ConfigureLogger(cfg.Env, cfg.LogLevel)

	if err := run(context.Background(), cfg, flag.Arg(0), os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func usage() error {
	return fmt.Errorf("usage: go run ./cmd/migrate <auto|status>")
}

func run(ctx context.Context, cfg *config.Config, command string, out io.Writer) error {
	command = strings.ToLower(strings.TrimSpace(command))
	if command != "auto" && command != "status" {
		return usage()
	}

	if cfg.DBDriver == config.DriverMongo {
		return runMongo(ctx, cfg, command, out)
	}

	db, err := database.ConnectWithOptions(cfg, database.ConnectOptions{ApplySchema: false})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	if command == "auto" {
		if err := database.Migrate(db); err != nil {
			return err
		}
		fmt.Fprintln(out, "automigrations applied")
	}

	status, err := database.GetSchemaStatus(db)
	if err != nil {
		return fmt.Errorf("schema status failed: %w", err)
	}
	fmt.Fprintf(out, "driver=%s env=%s ready=%t\n", cfg.DBDriver, cfg.Env, status.Ready())
	for _, table := range status.Missing() {
		fmt.Fprintf(out, "missing table: %s\n", table)
	}
	return nil
}

func runMongo(ctx context.Context, cfg *config.Config, command string, out io.Writer) error {
	db, err := database.ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	defer func() { _ = db.Client().Disconnect(ctx) }()

	if command == "status" {
		fmt.Fprintf(out, "driver=%s env=%s collections are created on first write\n", cfg.DBDriver, cfg.Env)
		return nil
	}
	if err := database.EnsureMongoIndexes(ctx, db); err != nil {
		return fmt.Errorf("mongo index setup failed: %w", err)
	}
	fmt.Fprintln(out, "mongo indexes ensured")
	return nil
}
