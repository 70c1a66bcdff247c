package main

import (
	"crypto/tls"
	"database/sql"
	"fmt"
	"log"
	"os"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"readinglog/internal/config"
	"readinglog/migrations"
)

// createDir is where `migrate create` writes new migration files
const createDir = "./migrations"

var db *sql.DB

func main() {
	rootCmd := &cobra.Command{
		Use:               "migrate",
		Short:             "Manage the ClickHouse schema of the reading history",
		PersistentPreRunE: connect,
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if db != nil {
				db.Close()
			}
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := goose.Up(db, "."); err != nil {
					return fmt.Errorf("failed to run migrations: %w", err)
				}
				log.Println("Migrations completed successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the latest migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := goose.Down(db, "."); err != nil {
					return fmt.Errorf("failed to rollback migration: %w", err)
				}
				log.Println("Rollback completed successfully")
				return nil
			},
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the status of every migration",
			RunE: func(cmd *cobra.Command, args []string) error {
				return goose.Status(db, ".")
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := goose.GetDBVersion(db)
				if err != nil {
					return fmt.Errorf("failed to get version: %w", err)
				}
				log.Printf("Current migration version: %d", version)
				return nil
			},
		},
		&cobra.Command{
			Use:   "create NAME",
			Short: "Create a new SQL migration in " + createDir,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				// New files go to disk, not the embedded set
				goose.SetBaseFS(nil)
				if err := goose.Create(db, createDir, args[0], "sql"); err != nil {
					return fmt.Errorf("failed to create migration: %w", err)
				}
				log.Printf("Created migration: %s", args[0])
				return nil
			},
		},
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// connect opens the ClickHouse database described by the environment
func connect(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using existing environment variables")
	}

	cfg := &config.Config{}
	if err := config.LoadClickHouseFromEnv(cfg); err != nil {
		return err
	}

	options := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.ClickHouseHost, cfg.ClickHousePort)},
		Auth: clickhouse.Auth{
			Database: cfg.ClickHouseDatabase,
			Username: cfg.ClickHouseUser,
			Password: cfg.ClickHousePassword,
		},
	}
	if cfg.ClickHouseUseTLS {
		options.TLS = &tls.Config{}
	}

	db = clickhouse.OpenDB(options)
	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}
	log.Println("Connected to ClickHouse successfully")

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("clickhouse"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}
