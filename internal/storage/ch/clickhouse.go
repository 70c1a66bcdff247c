package ch

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"readinglog/internal/models"

	"github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseDB struct {
	conn clickhouse.Conn
}

// NewClickHouseDB creates a new ClickHouse database connection
func NewClickHouseDB(host string, port int, database, user, password string, useTLS bool) (*ClickHouseDB, error) {
	addr := fmt.Sprintf("%s:%d", host, port)

	options := &clickhouse.Options{
		Addr:     []string{addr},
		Protocol: clickhouse.Native,
		Auth: clickhouse.Auth{
			Database: database,
			Username: user,
			Password: password,
		},
	}

	// Configure TLS if enabled
	if useTLS {
		options.TLS = &tls.Config{
			InsecureSkipVerify: false,
		}
	}

	conn, err := clickhouse.Open(options)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	// Test the connection
	if err := conn.Ping(context.Background()); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseDB{conn: conn}, nil
}

// Initialize is a no-op - tables are managed via migrations
func (db *ClickHouseDB) Initialize(ctx context.Context) error {
	// Tables are managed via migrations (see migrations/ directory)
	return nil
}

// SaveDailyLog inserts one row per day of the log in a single batch
func (db *ClickHouseDB) SaveDailyLog(ctx context.Context, generatedAt time.Time, log models.DailyLog) error {
	if len(log) == 0 {
		return nil
	}

	batch, err := db.conn.PrepareBatch(ctx, `INSERT INTO daily_pages (date, pages, generated_at)`)
	if err != nil {
		return fmt.Errorf("failed to prepare daily log batch: %w", err)
	}

	for _, day := range log {
		if err := batch.Append(day.Date, uint32(day.Pages), generatedAt.UTC()); err != nil {
			return fmt.Errorf("failed to append day %s: %w", day.Key(), err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("failed to save daily log: %w", err)
	}
	return nil
}

// GetDailyLog returns the most recently generated total of each day in range
func (db *ClickHouseDB) GetDailyLog(ctx context.Context, from, to time.Time) (models.DailyLog, error) {
	rows, err := db.conn.Query(ctx, `
		SELECT date, argMax(pages, generated_at) AS latest
		FROM daily_pages
		WHERE date >= toDate(?) AND date <= toDate(?)
		GROUP BY date
		HAVING latest > 0
		ORDER BY date`,
		from.Format(models.DateLayout), to.Format(models.DateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to get daily log: %w", err)
	}
	defer rows.Close()

	var log models.DailyLog
	for rows.Next() {
		var (
			date  time.Time
			pages uint32
		)
		if err := rows.Scan(&date, &pages); err != nil {
			return nil, fmt.Errorf("failed to scan day: %w", err)
		}
		log = append(log, models.DayPages{Date: models.Day(date), Pages: int(pages)})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read daily log: %w", err)
	}
	return log, nil
}

// GetTotalPages sums the most recently generated totals of the days in range
func (db *ClickHouseDB) GetTotalPages(ctx context.Context, from, to time.Time) (int, error) {
	var total uint64
	err := db.conn.QueryRow(ctx, `
		SELECT sum(latest) FROM (
			SELECT argMax(pages, generated_at) AS latest
			FROM daily_pages
			WHERE date >= toDate(?) AND date <= toDate(?)
			GROUP BY date
		)`,
		from.Format(models.DateLayout), to.Format(models.DateLayout)).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to get total pages: %w", err)
	}
	return int(total), nil
}

// Close closes the database connection
func (db *ClickHouseDB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
