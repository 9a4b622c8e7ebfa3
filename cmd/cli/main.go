package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/onedotone/landing-api/config"
	"github.com/onedotone/landing-api/internal/log"
	schema "github.com/onedotone/landing-api/migrations"
	"github.com/onedotone/landing-api/pkg/migrations"
	"github.com/onedotone/landing-api/pkg/utils"
)

func main() {
	logger := log.NewLoggerWithJSONOutput()

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	args := os.Args[1:]
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "migrate":
		withDatabase(logger, func(ctx context.Context, sqlDB *sql.DB, cfg migrations.Config) error {
			return migrations.Up(ctx, sqlDB, cfg)
		})
		logger.Info("Database migrations completed")
		return

	case "migrate-down":
		steps := 1
		if len(args) > 1 {
			n, err := strconv.Atoi(args[1])
			if err != nil || n <= 0 {
				fmt.Fprintf(os.Stderr, "invalid step count: %s\n", args[1])
				os.Exit(1)
			}
			steps = n
		}
		withDatabase(logger, func(ctx context.Context, sqlDB *sql.DB, cfg migrations.Config) error {
			return migrations.Down(ctx, sqlDB, cfg, steps)
		})
		logger.Info("Database migrations rolled back", "steps", steps)
		return

	case "migrate-version":
		withDatabase(logger, func(ctx context.Context, sqlDB *sql.DB, cfg migrations.Config) error {
			version, dirty, ok, err := migrations.Version(ctx, sqlDB, cfg)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Println("no migrations applied")
				return nil
			}
			fmt.Printf("version %d (dirty: %t)\n", version, dirty)
			return nil
		})
		return

	case "demo":
		if err := RunDemo(logger, args[1:]); err != nil {
			logger.Error("Demo failed", "error", err.Error())
			os.Exit(1)
		}
		return

	case "help", "-h", "--help":
		printUsage()
		return

	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
}

// withDatabase connects, runs fn against the schema source and exits the
// process on failure.
func withDatabase(logger *log.Logger, fn func(ctx context.Context, sqlDB *sql.DB, cfg migrations.Config) error) {
	db, err := config.NewDatabase(logger, nil)
	if err != nil {
		logger.Error("Failed to connect to database for migration", "error", err.Error())
		os.Exit(1)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error("Failed to get SQL DB instance for migration", "error", err.Error())
		os.Exit(1)
	}

	cfg := migrations.Config{Logger: logger, FS: schema.Files}
	if dir := utils.GetEnvTrimmed("MIGRATIONS_DIR"); dir != "" {
		cfg = migrations.Config{Logger: logger, Dir: dir}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	err = fn(ctx, sqlDB, cfg)
	cancel()

	if closeErr := sqlDB.Close(); closeErr != nil {
		logger.Warn("Failed to close SQL DB after migration", "error", closeErr.Error())
	}

	if err != nil {
		logger.Error("Database migration failed", "error", err.Error())
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: cli <command>")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate            Apply pending SQL migrations (embedded, or MIGRATIONS_DIR when set)")
	fmt.Println("  migrate-down [n]   Roll back the last n migrations (default 1)")
	fmt.Println("  migrate-version    Print the applied schema version")
	fmt.Println("  demo [query...]    Play the scripted chat demo in the terminal, then answer each query")
}
