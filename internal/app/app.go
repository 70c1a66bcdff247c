package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"go.uber.org/zap"

	"readinglog/internal/aggregate"
	"readinglog/internal/config"
	"readinglog/internal/document"
	"readinglog/internal/models"
	"readinglog/internal/notify"
	"readinglog/internal/reading"
	"readinglog/internal/storage"
	"readinglog/internal/storage/ch"
	"readinglog/internal/storage/stubs"
)

// historyStart is the earliest day a ClickHouse Date column can hold
var historyStart = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

// ErrStale is returned in check mode when the document's daily log is out of date
var ErrStale = errors.New("daily_log is out of date")

// Options selects how the patched document is emitted
type Options struct {
	DryRun bool // Print the patched document instead of writing it
	Check  bool // Write nothing, fail with ErrStale if the document would change
}

// Result describes a completed run
type Result struct {
	Entries    int
	TotalPages int
	Changed    bool
}

// App represents the application
type App struct {
	config   *config.Config
	logger   *zap.Logger
	db       storage.Storage // nil when history is disabled
	notifier notify.Notifier
	stdout   io.Writer
	now      func() time.Time
}

// New creates and initializes a new application instance
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	app := &App{
		config:   cfg,
		logger:   logger,
		notifier: notify.Nop{},
		stdout:   os.Stdout,
		now:      time.Now,
	}

	// Initialize history storage
	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	// Initialize notifier
	if err := app.initNotifier(); err != nil {
		app.Close()
		return nil, err
	}

	return app, nil
}

// initDatabase initializes the history storage when enabled
func (a *App) initDatabase() error {
	if !a.config.StoreHistory {
		a.logger.Debug("History storage disabled")
		return nil
	}

	var db storage.Storage
	if a.config.UseMockDB {
		a.logger.Info("Using mock database")
		db = stubs.NewMockDB()
	} else {
		a.logger.Info("Connecting to ClickHouse",
			zap.String("host", a.config.ClickHouseHost),
			zap.Int("port", a.config.ClickHousePort),
			zap.String("database", a.config.ClickHouseDatabase),
			zap.String("user", a.config.ClickHouseUser),
			zap.Bool("tls", a.config.ClickHouseUseTLS),
		)
		clickhouseDB, err := ch.NewClickHouseDB(
			a.config.ClickHouseHost,
			a.config.ClickHousePort,
			a.config.ClickHouseDatabase,
			a.config.ClickHouseUser,
			a.config.ClickHousePassword,
			a.config.ClickHouseUseTLS,
		)
		if err != nil {
			return fmt.Errorf("failed to connect to ClickHouse: %w", err)
		}
		db = clickhouseDB
	}

	if err := db.Initialize(context.Background()); err != nil {
		db.Close()
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	a.logger.Debug("Database initialized successfully")

	a.db = db
	return nil
}

// initNotifier initializes the Telegram notifier when a token is configured
func (a *App) initNotifier() error {
	if a.config.TelegramToken == "" {
		return nil
	}

	notifier, err := notify.NewTelegram(a.config.TelegramToken, a.config.NotifyChatIDs, a.logger)
	if err != nil {
		return fmt.Errorf("failed to create Telegram notifier: %w", err)
	}
	a.notifier = notifier
	return nil
}

// Run regenerates the daily log of the configured document
func (a *App) Run(ctx context.Context, opts Options) (Result, error) {
	path := a.config.DataPath
	logger := a.logger.With(zap.String("path", path))

	data, err := reading.Load(path)
	if err != nil {
		return Result{}, err
	}

	doc, err := reading.Parse(data)
	if err != nil {
		return Result{}, fmt.Errorf("%s: %w", path, err)
	}

	today := a.config.ReferenceDate(a.now())
	log := aggregate.Aggregate(doc.Books, today, a.config.WindowDays)

	original := string(data)
	patched := document.Patch(original, log)

	result := Result{
		Entries:    len(log),
		TotalPages: log.TotalPages(),
		Changed:    patched != original,
	}
	logger.Debug("Daily log generated",
		zap.Int("books", len(doc.Books)),
		zap.Int("entries", result.Entries),
		zap.Int("total_pages", result.TotalPages),
		zap.Time("today", today),
		zap.Int("window_days", a.config.WindowDays),
	)

	switch {
	case opts.DryRun:
		if _, err := io.WriteString(a.stdout, patched); err != nil {
			return result, fmt.Errorf("failed to print document: %w", err)
		}
		return result, nil
	case opts.Check:
		if result.Changed {
			return result, fmt.Errorf("%s: %w", path, ErrStale)
		}
		logger.Info("Daily log is up to date")
		return result, nil
	}

	if result.Changed {
		if err := reading.WriteFile(path, []byte(patched)); err != nil {
			return result, err
		}
		logger.Info("Document updated", zap.Int("entries", result.Entries))
	} else {
		logger.Info("Document already up to date")
	}

	if err := a.saveHistory(ctx, log); err != nil {
		return result, err
	}

	summary := notify.Summarize(log, today)
	summary.HistoryPages = a.historyTotal(ctx, today)
	if err := a.notifier.Notify(ctx, summary); err != nil {
		logger.Warn("Failed to send notification", zap.Error(err))
	}

	return result, nil
}

func (a *App) saveHistory(ctx context.Context, log models.DailyLog) error {
	if a.db == nil {
		return nil
	}
	if err := a.db.SaveDailyLog(ctx, a.now(), log); err != nil {
		a.logger.Error("Failed to save daily log history", zap.Error(err))
		return fmt.Errorf("failed to save history: %w", err)
	}
	a.logger.Debug("Daily log history saved", zap.Int("entries", len(log)))
	return nil
}

// historyTotal returns the pages of every stored day up to today, or zero when
// history is disabled or the query fails
func (a *App) historyTotal(ctx context.Context, today time.Time) int {
	if a.db == nil {
		return 0
	}
	total, err := a.db.GetTotalPages(ctx, historyStart, today)
	if err != nil {
		a.logger.Warn("Failed to read history total", zap.Error(err))
		return 0
	}
	return total
}

// Close releases the storage connection
func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Error closing database", zap.Error(err))
		return err
	}
	return nil
}
