package stubs

import (
	"context"
	"readinglog/internal/models"
	"sort"
	"sync"
	"time"
)

// record is one saved day total
type record struct {
	pages       int
	generatedAt time.Time
}

// MockDB is an in-memory implementation of the Storage interface for testing
type MockDB struct {
	mu   sync.RWMutex
	days map[time.Time]record
}

// NewMockDB creates a new mock database
func NewMockDB() *MockDB {
	return &MockDB{
		days: make(map[time.Time]record),
	}
}

// Initialize does nothing for mock DB
func (m *MockDB) Initialize(ctx context.Context) error {
	return nil
}

// SaveDailyLog stores the totals, keeping the most recently generated one per day
func (m *MockDB) SaveDailyLog(ctx context.Context, generatedAt time.Time, log models.DailyLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, day := range log {
		key := models.Day(day.Date)
		if existing, ok := m.days[key]; ok && existing.generatedAt.After(generatedAt) {
			continue
		}
		m.days[key] = record{pages: day.Pages, generatedAt: generatedAt}
	}
	return nil
}

// GetDailyLog returns the stored totals within the date range
func (m *MockDB) GetDailyLog(ctx context.Context, from, to time.Time) (models.DailyLog, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	from, to = models.Day(from), models.Day(to)

	var log models.DailyLog
	for date, rec := range m.days {
		// Filter by date range
		if date.Before(from) || date.After(to) || rec.pages <= 0 {
			continue
		}
		log = append(log, models.DayPages{Date: date, Pages: rec.pages})
	}

	// Sort by date ascending
	sort.Slice(log, func(i, j int) bool {
		return log[i].Date.Before(log[j].Date)
	})

	return log, nil
}

// GetTotalPages returns the sum of stored totals within the date range
func (m *MockDB) GetTotalPages(ctx context.Context, from, to time.Time) (int, error) {
	log, err := m.GetDailyLog(ctx, from, to)
	if err != nil {
		return 0, err
	}
	return log.TotalPages(), nil
}

// Close does nothing for mock DB
func (m *MockDB) Close() error {
	return nil
}
