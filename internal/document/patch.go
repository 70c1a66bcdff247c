package document

import (
	"fmt"
	"strings"

	"readinglog/internal/models"
)

const (
	// LogKey is the top-level key holding the generated daily log
	LogKey = "daily_log"
	// DeprecatedLogKey names a section from older documents that is removed on patch
	DeprecatedLogKey = "comic_log"
	// ItemsKey is the top-level key the log section is inserted before when missing
	ItemsKey = "books"

	// emptyLog keeps an empty section a valid YAML mapping
	emptyLog = "  {}"
)

// Patcher rewrites the daily log section of a reading document line by line.
// Lines outside the replaced and removed sections are copied verbatim.
type Patcher struct {
	LogKey      string
	RemovedKeys []string
	AnchorKey   string
}

// NewPatcher returns a patcher for the daily_log section of reading.yml
func NewPatcher() *Patcher {
	return &Patcher{
		LogKey:      LogKey,
		RemovedKeys: []string{DeprecatedLogKey},
		AnchorKey:   ItemsKey,
	}
}

// Patch rewrites text with the default patcher
func Patch(text string, log models.DailyLog) string {
	return NewPatcher().Patch(text, log)
}

// Patch returns text with the log section replaced by log and the removed
// sections dropped. A header with an inline value such as "daily_log: {}"
// counts as the log section. A missing log section is inserted before the
// anchor key, or before the first top-level key when there is no anchor.
// The result ends with a single newline.
func (p *Patcher) Patch(text string, log models.DailyLog) string {
	lines := splitLines(text)
	section := renderSection(p.LogKey, log)

	out := make([]string, 0, len(lines)+len(section))
	replaced := false

	for i := 0; i < len(lines); {
		line := lines[i]

		switch {
		case isKey(line, p.LogKey) && !replaced:
			out = append(out, section...)
			i = skipBody(lines, i+1)
			replaced = true
		case isKey(line, p.LogKey) || p.isRemoved(line):
			// Duplicate log sections go the same way as deprecated ones
			i = skipBody(lines, i+1)
		default:
			out = append(out, line)
			i++
		}
	}

	if !replaced {
		at := p.insertAt(out)

		inserted := make([]string, 0, len(out)+len(section)+1)
		inserted = append(inserted, out[:at]...)
		inserted = append(inserted, section...)
		inserted = append(inserted, "")
		inserted = append(inserted, out[at:]...)
		out = inserted
	}

	return strings.TrimRight(strings.Join(out, "\n"), "\n") + "\n"
}

// insertAt returns the index the log section goes in at. Leading comments
// stay above it, otherwise the next patch would take them for its body.
func (p *Patcher) insertAt(lines []string) int {
	for idx, line := range lines {
		if isKey(line, p.AnchorKey) {
			return idx
		}
	}
	for idx, line := range lines {
		if isTopLevel(line) {
			return idx
		}
	}
	return len(lines)
}

func (p *Patcher) isRemoved(line string) bool {
	for _, key := range p.RemovedKeys {
		if isKey(line, key) {
			return true
		}
	}
	return false
}

// renderSection formats the log as a block mapping under key
func renderSection(key string, log models.DailyLog) []string {
	section := []string{key + ":"}
	if len(log) == 0 {
		return append(section, emptyLog)
	}
	for _, day := range log {
		section = append(section, fmt.Sprintf("  %q: %d", day.Key(), day.Pages))
	}
	return section
}

// skipBody returns the index of the first line after the section body that starts at i.
// Blank lines before the next top-level key are left in place.
func skipBody(lines []string, i int) int {
	for i < len(lines) {
		line := lines[i]
		if isTopLevel(line) {
			return i
		}
		if isBlank(line) {
			j := i + 1
			for j < len(lines) && isBlank(lines[j]) {
				j++
			}
			if j < len(lines) && isTopLevel(lines[j]) {
				return i
			}
		}
		i++
	}
	return i
}

func splitLines(text string) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// isKey reports whether line is the top-level key, whatever follows the colon
func isKey(line, key string) bool {
	if isIndented(line) || !strings.HasPrefix(line, key+":") {
		return false
	}
	rest := line[len(key)+1:]
	return rest == "" || strings.ContainsRune(" \t\r#", rune(rest[0]))
}

// isTopLevel reports whether line starts a new top-level entry
func isTopLevel(line string) bool {
	return !isBlank(line) && !isIndented(line) && !isComment(line)
}

func isIndented(line string) bool {
	return strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")
}

func isComment(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
