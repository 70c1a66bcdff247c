package aggregate

import (
	"sort"
	"time"

	"readinglog/internal/models"
)

// DefaultWindowDays is the length of the trailing window (twelve weeks)
const DefaultWindowDays = 84

// Aggregate computes the daily log from the reading items.
//
// Rules:
// 1. Only books that are being read or are completed count
// 2. Only log entries with a valid date on or after today minus windowDays count
// 3. An entry covers end_page - start_page + 1 pages when both bounds are set and ordered
// 4. Days with no pages are left out, the rest are sorted by date
//
// A windowDays of zero or less selects DefaultWindowDays.
func Aggregate(items []models.ReadingItem, today time.Time, windowDays int) models.DailyLog {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	cutoff := models.Day(today).AddDate(0, 0, -windowDays)

	totals := make(map[time.Time]int)
	for _, item := range items {
		if !item.Status.Counts() {
			continue
		}

		for _, entry := range item.Logs {
			date, ok := entry.Date.Get()
			if !ok || date.Before(cutoff) {
				continue
			}

			if pages := entry.Pages(); pages > 0 {
				totals[date] += pages
			}
		}
	}

	log := make(models.DailyLog, 0, len(totals))
	for date, pages := range totals {
		log = append(log, models.DayPages{Date: date, Pages: pages})
	}

	// Sort by date ascending
	sort.Slice(log, func(i, j int) bool {
		return log[i].Date.Before(log[j].Date)
	})

	return log
}
