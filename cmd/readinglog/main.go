package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"readinglog/internal/app"
	"readinglog/internal/config"
)

var (
	dataPath   string
	today      string
	windowDays int
	dryRun     bool
	check      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "readinglog",
		Short: "Regenerate the daily_log section of the reading data file",
		Long: `readinglog sums the pages of every dated log entry of books being read or
completed during the trailing window, and rewrites the daily_log section of
the reading data file in place. Every other line of the file is left as is.`,
		RunE:          run,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := rootCmd.Flags()
	flags.StringVar(&dataPath, "data", "", "Path of the reading data file (default $READING_DATA_PATH or "+config.DefaultDataPath+")")
	flags.StringVar(&today, "today", "", "Reference date as YYYY-MM-DD (default $READING_TODAY or the current date)")
	flags.IntVar(&windowDays, "window", 0, "Trailing window in days (default $READING_WINDOW_DAYS or 84)")
	flags.BoolVar(&dryRun, "dry-run", false, "Print the updated file to stdout instead of writing it")
	flags.BoolVar(&check, "check", false, "Exit with an error if the file is not up to date, without writing it")
	rootCmd.MarkFlagsMutuallyExclusive("dry-run", "check")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	// Load .env file if it exists
	envErr := godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyFlags(cmd, cfg); err != nil {
		return err
	}

	logger, err := app.NewLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if envErr != nil {
		logger.Debug("No .env file found, using system environment variables")
	}

	application, err := app.New(cfg, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	result, err := application.Run(ctx, app.Options{DryRun: dryRun, Check: check})
	if err != nil {
		return err
	}

	if dryRun {
		logger.Info("Generated daily_log", zap.Int("entries", result.Entries))
		return nil
	}
	fmt.Printf("Generated daily_log with %d entries\n", result.Entries)
	return nil
}

// applyFlags overrides environment configuration with explicitly set flags
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	if flags.Changed("data") {
		cfg.DataPath = dataPath
	}
	if flags.Changed("today") {
		t, err := config.ParseToday(today)
		if err != nil {
			return fmt.Errorf("invalid --today: %w", err)
		}
		cfg.Today = t
	}
	if flags.Changed("window") {
		if windowDays <= 0 {
			return fmt.Errorf("invalid --window: must be positive, got %d", windowDays)
		}
		cfg.WindowDays = windowDays
	}
	return nil
}
