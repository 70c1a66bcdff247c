package models

import (
	"math"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DateLayout is the ISO calendar date format used for log keys
const DateLayout = "2006-01-02"

// Status is the reading state of a book
type Status string

const (
	StatusPlanned   Status = "planned"
	StatusReading   Status = "reading"
	StatusCompleted Status = "completed"
	StatusAbandoned Status = "abandoned"
)

// Counts reports whether books in this state contribute pages to the daily log
func (s Status) Counts() bool {
	return s == StatusReading || s == StatusCompleted
}

// ReadingItem represents one book in the reading document
type ReadingItem struct {
	Title  string     `yaml:"title"`
	Author string     `yaml:"author"`
	Status Status     `yaml:"status"`
	Logs   []LogEntry `yaml:"logs"`
}

// LogEntry is one dated progress observation of a book
type LogEntry struct {
	Date      LogDate    `yaml:"date"`
	StartPage PageNumber `yaml:"start_page"`
	EndPage   PageNumber `yaml:"end_page"`
}

// Pages returns the number of pages the entry covers. Entries without a
// complete, ordered page range cover nothing.
func (e LogEntry) Pages() int {
	start, ok := e.StartPage.Get()
	if !ok {
		return 0
	}
	end, ok := e.EndPage.Get()
	if !ok || end < start {
		return 0
	}
	return end - start + 1
}

// PageNumber is an optional page number decoded leniently from hand-edited YAML.
// Values that are not numbers leave it unset instead of failing the decode.
type PageNumber struct {
	value int
	valid bool
}

// NewPageNumber returns a set page number
func NewPageNumber(n int) PageNumber {
	return PageNumber{value: n, valid: true}
}

// Get returns the page number and whether it was set
func (p PageNumber) Get() (int, bool) {
	return p.value, p.valid
}

// UnmarshalYAML implements yaml.Unmarshaler
func (p *PageNumber) UnmarshalYAML(node *yaml.Node) error {
	*p = PageNumber{}
	if node.Kind != yaml.ScalarNode {
		return nil
	}

	switch node.ShortTag() {
	case "!!int":
		var n int
		if err := node.Decode(&n); err == nil {
			*p = NewPageNumber(n)
		}
	case "!!float":
		var f float64
		if err := node.Decode(&f); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			*p = NewPageNumber(int(f))
		}
	case "!!str":
		if n, err := strconv.Atoi(strings.TrimSpace(node.Value)); err == nil {
			*p = NewPageNumber(n)
		}
	}
	return nil
}

// LogDate is an optional calendar date decoded leniently from hand-edited YAML
type LogDate struct {
	value time.Time
	valid bool
}

// NewLogDate returns a set date truncated to its calendar day in UTC
func NewLogDate(t time.Time) LogDate {
	return LogDate{value: Day(t), valid: true}
}

// ParseLogDate parses a YYYY-MM-DD string. Unparseable input yields an unset date.
func ParseLogDate(s string) LogDate {
	t, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return LogDate{}
	}
	return LogDate{value: t, valid: true}
}

// Get returns the date and whether it was set
func (d LogDate) Get() (time.Time, bool) {
	return d.value, d.valid
}

// UnmarshalYAML implements yaml.Unmarshaler
func (d *LogDate) UnmarshalYAML(node *yaml.Node) error {
	*d = LogDate{}
	if node.Kind == yaml.ScalarNode {
		*d = ParseLogDate(node.Value)
	}
	return nil
}

// Day truncates t to midnight UTC of its calendar day
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DayPages is the total number of pages read on one day
type DayPages struct {
	Date  time.Time
	Pages int
}

// Key returns the date formatted as YYYY-MM-DD
func (d DayPages) Key() string {
	return d.Date.Format(DateLayout)
}

// DailyLog is the per-day page totals, sorted by ascending date, with no zero days
type DailyLog []DayPages

// TotalPages returns the sum of pages over all days
func (l DailyLog) TotalPages() int {
	total := 0
	for _, d := range l {
		total += d.Pages
	}
	return total
}

// Map returns the log keyed by YYYY-MM-DD
func (l DailyLog) Map() map[string]int {
	m := make(map[string]int, len(l))
	for _, d := range l {
		m[d.Key()] = d.Pages
	}
	return m
}
