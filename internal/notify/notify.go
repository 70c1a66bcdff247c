package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"readinglog/internal/models"
)

// recentDays is the span of the "last week" figure in the summary
const recentDays = 7

// Summary describes the outcome of one generation run
type Summary struct {
	Today       time.Time
	Entries     int
	TotalPages  int
	RecentPages int
	BestDay     models.DayPages // Zero when the log is empty

	HistoryPages int // All stored days, zero when history is disabled
}

// Summarize computes the run summary from the generated log
func Summarize(log models.DailyLog, today time.Time) Summary {
	today = models.Day(today)
	recentFrom := today.AddDate(0, 0, -(recentDays - 1))

	s := Summary{
		Today:      today,
		Entries:    len(log),
		TotalPages: log.TotalPages(),
	}
	for _, day := range log {
		if !day.Date.Before(recentFrom) && !day.Date.After(today) {
			s.RecentPages += day.Pages
		}
		// Earliest day wins ties, the log is sorted
		if day.Pages > s.BestDay.Pages {
			s.BestDay = day
		}
	}
	return s
}

// Text formats the summary as a chat message
func (s Summary) Text() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 Reading log updated (%s)\n", s.Today.Format(models.DateLayout))
	fmt.Fprintf(&sb, "Days logged: %d\n", s.Entries)
	fmt.Fprintf(&sb, "Pages read: %d\n", s.TotalPages)
	fmt.Fprintf(&sb, "Last %d days: %d pages", recentDays, s.RecentPages)
	if s.BestDay.Pages > 0 {
		fmt.Fprintf(&sb, "\nBest day: %s (%d pages)", s.BestDay.Key(), s.BestDay.Pages)
	}
	if s.HistoryPages > 0 {
		fmt.Fprintf(&sb, "\nAll time: %d pages", s.HistoryPages)
	}
	return sb.String()
}

// Notifier delivers run summaries
type Notifier interface {
	Notify(ctx context.Context, summary Summary) error
}

// Nop is a Notifier that discards summaries
type Nop struct{}

// Notify does nothing
func (Nop) Notify(ctx context.Context, summary Summary) error {
	return nil
}
