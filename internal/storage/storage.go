package storage

import (
	"context"
	"time"

	"readinglog/internal/models"
)

// Storage keeps the history of generated daily page totals, so days that
// have slid out of the document's trailing window are not lost
type Storage interface {
	// SaveDailyLog records the totals of one run. A day saved again by a later
	// run replaces the earlier total.
	SaveDailyLog(ctx context.Context, generatedAt time.Time, log models.DailyLog) error

	// GetDailyLog returns the latest total of every day in [from, to], sorted by date
	GetDailyLog(ctx context.Context, from, to time.Time) (models.DailyLog, error)

	// GetTotalPages returns the sum of the latest totals of the days in [from, to]
	GetTotalPages(ctx context.Context, from, to time.Time) (int, error)

	// Lifecycle
	Initialize(ctx context.Context) error
	Close() error
}
