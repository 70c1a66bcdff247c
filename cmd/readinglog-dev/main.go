package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"go.uber.org/zap"

	"readinglog/internal/app"
	"readinglog/internal/config"
	"readinglog/internal/storage/ch"
	"readinglog/migrations"
)

// Runs the generator against a throwaway ClickHouse container with history
// enabled, then prints what was stored
func main() {
	os.Exit(start())
}

func start() int {
	dataPath := flag.String("data", config.DefaultDataPath, "Path of the reading data file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Println("Starting ClickHouse testcontainer...")

	// Start ClickHouse container
	clickhouseContainer, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:latest",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword("devpassword"),
		clickhouse.WithDatabase("default"),
	)
	if err != nil {
		log.Printf("Failed to start ClickHouse container: %v", err)
		return 1
	}

	// Ensure container cleanup on exit
	defer func() {
		log.Println("Stopping ClickHouse container...")
		if err := clickhouseContainer.Terminate(context.Background()); err != nil {
			log.Printf("Failed to terminate container: %v", err)
		}
	}()

	if err := run(ctx, clickhouseContainer, *dataPath); err != nil {
		log.Printf("Error: %v", err)
		return 1
	}
	return 0
}

func run(ctx context.Context, container *clickhouse.ClickHouseContainer, dataPath string) error {
	host, err := container.Host(ctx)
	if err != nil {
		return fmt.Errorf("failed to get container host: %w", err)
	}
	port, err := container.MappedPort(ctx, "9000/tcp")
	if err != nil {
		return fmt.Errorf("failed to get container port: %w", err)
	}
	log.Printf("ClickHouse started at %s:%s", host, port.Port())

	// Apply the schema through goose, as cmd/migrate would
	dsn, err := container.ConnectionString(ctx)
	if err != nil {
		return fmt.Errorf("failed to get connection string: %w", err)
	}
	db, err := goose.OpenDBWithDriver("clickhouse", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	cfg := &config.Config{
		DataPath:           dataPath,
		WindowDays:         config.DefaultWindowDays,
		LogLevel:           "debug",
		StoreHistory:       true,
		ClickHouseHost:     host,
		ClickHousePort:     port.Int(),
		ClickHouseDatabase: "default",
		ClickHouseUser:     "default",
		ClickHousePassword: "devpassword",
	}

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	result, err := application.Run(ctx, app.Options{})
	if err != nil {
		return err
	}
	logger.Info("Generated daily_log", zap.Int("entries", result.Entries), zap.Bool("changed", result.Changed))

	// Read back what the run stored
	history, err := ch.NewClickHouseDB(host, port.Int(), "default", "default", "devpassword", false)
	if err != nil {
		return err
	}
	defer history.Close()

	today := cfg.ReferenceDate(time.Now())
	stored, err := history.GetDailyLog(ctx, today.AddDate(0, 0, -cfg.WindowDays), today)
	if err != nil {
		return err
	}
	for _, day := range stored {
		fmt.Printf("%s\t%d\n", day.Key(), day.Pages)
	}
	return nil
}
