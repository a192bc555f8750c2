// Package session reads the append-only session log and groups its
// entries into per-session summaries. The log is the source of truth:
// summaries are rebuilt from scratch on every request, never cached.
package session

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// maxPreviewLen bounds the first-message preview carried per entry.
const maxPreviewLen = 200

// Entry is a single session log record, immutable once parsed. Multiple
// entries share a SessionID.
type Entry struct {
	SessionID string    `json:"sessionId"`
	Project   string    `json:"project"`
	Display   string    `json:"display"`
	Timestamp time.Time `json:"timestamp"`
}

// Summary groups the entries of one session.
type Summary struct {
	SessionID      string    `json:"sessionId"`
	Project        string    `json:"project"`
	FirstMessage   string    `json:"firstMessage"`
	MessageCount   int       `json:"messageCount"`
	FirstTimestamp time.Time `json:"firstTimestamp"`
	LastTimestamp  time.Time `json:"lastTimestamp"`
}

// rawEntry is the on-disk record shape: millisecond epoch timestamps.
type rawEntry struct {
	SessionID string `json:"sessionId"`
	Project   string `json:"project"`
	Display   string `json:"display"`
	Timestamp int64  `json:"timestamp"`
}

// Log reads session entries from a newline-delimited JSON file.
type Log struct {
	path   string
	logger zerolog.Logger
}

// NewLog creates a reader over the given log file.
func NewLog(path string, logger zerolog.Logger) *Log {
	return &Log{path: path, logger: logger}
}

// Load reads all entries from the log. A missing file yields an empty
// slice; a malformed line is skipped individually and never aborts the
// read.
func (l *Log) Load() []Entry {
	f, err := os.Open(l.path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var entries []Entry
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw rawEntry
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			continue
		}
		if raw.SessionID == "" {
			raw.SessionID = "unknown"
		}
		entries = append(entries, Entry{
			SessionID: raw.SessionID,
			Project:   raw.Project,
			Display:   truncate(raw.Display, maxPreviewLen),
			Timestamp: time.UnixMilli(raw.Timestamp).UTC(),
		})
	}
	if err := scanner.Err(); err != nil {
		l.logger.Warn().Err(err).Str("path", l.path).Msg("session log read stopped early")
	}
	return entries
}

// Summaries loads the log and groups entries by session, sorted by last
// activity, most recent first.
func (l *Log) Summaries() []Summary {
	return Summarize(l.Load())
}

// Summarize groups entries by SessionID. FirstMessage and FirstTimestamp
// come from the first contributing entry, MessageCount counts every
// entry, and LastTimestamp is the maximum timestamp seen. The result is
// sorted descending by LastTimestamp.
func Summarize(entries []Entry) []Summary {
	grouped := make(map[string]*Summary)
	order := make([]string, 0)
	for _, e := range entries {
		s, ok := grouped[e.SessionID]
		if !ok {
			s = &Summary{
				SessionID:      e.SessionID,
				Project:        e.Project,
				FirstMessage:   e.Display,
				FirstTimestamp: e.Timestamp,
				LastTimestamp:  e.Timestamp,
			}
			grouped[e.SessionID] = s
			order = append(order, e.SessionID)
		}
		s.MessageCount++
		if e.Timestamp.After(s.LastTimestamp) {
			s.LastTimestamp = e.Timestamp
		}
	}

	summaries := make([]Summary, 0, len(order))
	for _, id := range order {
		summaries = append(summaries, *grouped[id])
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		return summaries[i].LastTimestamp.After(summaries[j].LastTimestamp)
	})
	return summaries
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
