// Package main is the entry point for the exercise tracker server.
//
// main only reads configuration, builds the logger, and starts the server.
// All behaviour lives in the internal packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"github.com/sakif/exercise-tracker/internal/server"
)

// CLI is the server configuration. Every flag can also be set through the
// environment variable named in its env tag.
var CLI struct {
	Version kong.VersionFlag

	Port          int           `help:"Port to listen on." env:"PORT" default:"3000"`
	Store         string        `help:"Storage backend." env:"STORE" enum:"sqlite,mongo" default:"sqlite"`
	DBPath        string        `name:"db-path" help:"SQLite database file." env:"DB_PATH" default:"data/exercise.db"`
	MongoURI      string        `name:"mongo-uri" help:"MongoDB connection string." env:"DB_URI" default:"mongodb://localhost:27017"`
	MongoDatabase string        `name:"mongo-database" help:"MongoDB database name." env:"MONGO_DATABASE" default:"exercise_tracker"`
	StoreTimeout  time.Duration `help:"Upper bound on each store call." env:"STORE_TIMEOUT" default:"5s"`
	CORSOrigins   []string      `name:"cors-origins" help:"Allowed CORS origins." env:"CORS_ORIGINS" default:"*" sep:","`
	RateLimit     int           `help:"API requests per minute per client IP (0 disables)." env:"RATE_LIMIT" default:"0"`
	LogLevel      string        `help:"Minimum log level." env:"LOG_LEVEL" enum:"debug,info,warn,error" default:"info"`
}

func main() {
	kong.Parse(&CLI,
		kong.Name("exercise-tracker"),
		kong.Description("Exercise tracker HTTP API"),
		kong.UsageOnError(),
		kong.Vars{"version": "v1.0.0"},
	)

	var level slog.Level
	if err := level.UnmarshalText([]byte(CLI.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))

	if CLI.Store == server.StoreSQLite && CLI.DBPath != ":memory:" {
		dbDir := filepath.Dir(CLI.DBPath)
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dbDir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	cfg := server.Config{
		Port:          CLI.Port,
		Store:         CLI.Store,
		DBPath:        CLI.DBPath,
		MongoURI:      CLI.MongoURI,
		MongoDatabase: CLI.MongoDatabase,
		StoreTimeout:  CLI.StoreTimeout,
		CORSOrigins:   CLI.CORSOrigins,
		RateLimit:     CLI.RateLimit,
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Start blocks until SIGINT or SIGTERM.
	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
