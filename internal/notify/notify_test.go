package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"readinglog/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func day(s string, pages int) models.DayPages {
	d, _ := time.Parse(models.DateLayout, s)
	return models.DayPages{Date: d, Pages: pages}
}

func TestSummarize(t *testing.T) {
	today := time.Date(2024, 1, 10, 15, 0, 0, 0, time.UTC)
	log := models.DailyLog{
		day("2023-12-20", 40),
		day("2024-01-03", 5), // one day before the last seven
		day("2024-01-04", 12),
		day("2024-01-09", 40),
		day("2024-01-10", 8),
	}

	s := Summarize(log, today)

	assert.Equal(t, models.Day(today), s.Today)
	assert.Equal(t, 5, s.Entries)
	assert.Equal(t, 105, s.TotalPages)
	assert.Equal(t, 60, s.RecentPages)
	assert.Equal(t, "2023-12-20", s.BestDay.Key())
	assert.Equal(t, 40, s.BestDay.Pages)
}

func TestSummarize_EmptyLog(t *testing.T) {
	s := Summarize(nil, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	assert.Zero(t, s.Entries)
	assert.Zero(t, s.TotalPages)
	assert.Zero(t, s.RecentPages)
	assert.Zero(t, s.BestDay.Pages)
	assert.NotContains(t, s.Text(), "Best day")
}

func TestSummary_Text(t *testing.T) {
	s := Summarize(models.DailyLog{day("2024-01-09", 40)}, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))

	expected := "📚 Reading log updated (2024-01-10)\n" +
		"Days logged: 1\n" +
		"Pages read: 40\n" +
		"Last 7 days: 40 pages\n" +
		"Best day: 2024-01-09 (40 pages)"
	assert.Equal(t, expected, s.Text())
}

func TestSummary_TextHistory(t *testing.T) {
	s := Summarize(nil, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.NotContains(t, s.Text(), "All time")

	s.HistoryPages = 1250
	assert.True(t, strings.HasSuffix(s.Text(), "\nAll time: 1250 pages"), "got %q", s.Text())
}

func TestNop_Notify(t *testing.T) {
	var n Notifier = Nop{}
	assert.NoError(t, n.Notify(context.Background(), Summary{}))
}

// fakeBotAPI is a minimal Telegram Bot API server recording sent messages
type fakeBotAPI struct {
	mu       sync.Mutex
	sent     map[string]string
	failChat string
}

func (f *fakeBotAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	switch {
	case strings.HasSuffix(r.URL.Path, "/getMe"):
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok":     true,
			"result": map[string]interface{}{"id": 1, "is_bot": true, "first_name": "Reading", "username": "reading_log_bot"},
		})
	case strings.HasSuffix(r.URL.Path, "/sendMessage"):
		if err := r.ParseForm(); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		chatID := r.PostForm.Get("chat_id")
		if chatID == f.failChat {
			json.NewEncoder(w).Encode(map[string]interface{}{
				"ok": false, "error_code": 400, "description": "Bad Request: chat not found",
			})
			return
		}

		f.mu.Lock()
		f.sent[chatID] = r.PostForm.Get("text")
		f.mu.Unlock()

		json.NewEncoder(w).Encode(map[string]interface{}{
			"ok": true,
			"result": map[string]interface{}{
				"message_id": 1,
				"date":       0,
				"chat":       map[string]interface{}{"id": 1, "type": "private"},
				"text":       r.PostForm.Get("text"),
			},
		})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func newFakeTelegram(t *testing.T, fake *fakeBotAPI, chatIDs []int64) *Telegram {
	t.Helper()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	notifier, err := NewTelegramWithEndpoint("test-token", server.URL+"/bot%s/%s", chatIDs, zap.NewNop())
	require.NoError(t, err)
	return notifier
}

func TestTelegram_Notify(t *testing.T) {
	fake := &fakeBotAPI{sent: make(map[string]string)}
	notifier := newFakeTelegram(t, fake, []int64{123, -456})

	summary := Summarize(models.DailyLog{day("2024-01-09", 40)}, time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, notifier.Notify(context.Background(), summary))

	assert.Len(t, fake.sent, 2)
	assert.Equal(t, summary.Text(), fake.sent["123"])
	assert.Equal(t, summary.Text(), fake.sent["-456"])
}

func TestTelegram_NotifyContinuesPastFailures(t *testing.T) {
	fake := &fakeBotAPI{sent: make(map[string]string), failChat: "123"}
	notifier := newFakeTelegram(t, fake, []int64{123, 789})

	err := notifier.Notify(context.Background(), Summary{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chat 123")

	assert.Len(t, fake.sent, 1)
	assert.Contains(t, fake.sent, "789")
}

func TestTelegram_NotifyCancelled(t *testing.T) {
	fake := &fakeBotAPI{sent: make(map[string]string)}
	notifier := newFakeTelegram(t, fake, []int64{123})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, notifier.Notify(ctx, Summary{}), context.Canceled)
	assert.Empty(t, fake.sent)
}
