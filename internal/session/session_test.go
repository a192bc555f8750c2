package session_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectshome/hubd/internal/session"
)

func writeLog(t *testing.T, lines ...string) *session.Log {
	t.Helper()
	path := filepath.Join(t.TempDir(), "history.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644))
	return session.NewLog(path, zerolog.Nop())
}

func entryLine(sessionID, project, display string, ts time.Time) string {
	return fmt.Sprintf(`{"sessionId":%q,"project":%q,"display":%q,"timestamp":%d}`,
		sessionID, project, display, ts.UnixMilli())
}

func TestLoad_MissingFile(t *testing.T) {
	log := session.NewLog(filepath.Join(t.TempDir(), "absent.jsonl"), zerolog.Nop())
	assert.Empty(t, log.Load())
}

func TestLoad_SkipsMalformedLines(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	log := writeLog(t,
		entryLine("a", "/work/alpha", "first", now),
		`{not json at all`,
		entryLine("b", "/work/beta", "second", now),
		"",
		entryLine("c", "/work/gamma", "third", now),
	)

	entries := log.Load()
	require.Len(t, entries, 3)
	assert.Equal(t, "a", entries[0].SessionID)
	assert.Equal(t, "c", entries[2].SessionID)
}

func TestLoad_TruncatesDisplay(t *testing.T) {
	long := strings.Repeat("m", 300)
	log := writeLog(t, entryLine("a", "/work/alpha", long, time.Now()))

	entries := log.Load()
	require.Len(t, entries, 1)
	assert.Len(t, entries[0].Display, 200)
}

func TestSummarize_GroupsBySession(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	log := writeLog(t,
		entryLine("abc", "/work/alpha", "init repo", t0),
		entryLine("abc", "/work/alpha", "add tests", t0.Add(5*time.Minute)),
	)

	summaries := log.Summaries()
	require.Len(t, summaries, 1)

	s := summaries[0]
	assert.Equal(t, "abc", s.SessionID)
	assert.Equal(t, 2, s.MessageCount)
	assert.Equal(t, "init repo", s.FirstMessage)
	assert.Equal(t, t0, s.FirstTimestamp)
	assert.Equal(t, t0.Add(5*time.Minute), s.LastTimestamp)
}

func TestSummarize_LastTimestampIsMaxSeen(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	// Entries arrive out of order; the max must win, not the last line.
	entries := []session.Entry{
		{SessionID: "s", Timestamp: t0},
		{SessionID: "s", Timestamp: t0.Add(10 * time.Minute)},
		{SessionID: "s", Timestamp: t0.Add(2 * time.Minute)},
	}

	summaries := session.Summarize(entries)
	require.Len(t, summaries, 1)
	assert.Equal(t, t0.Add(10*time.Minute), summaries[0].LastTimestamp)
	assert.Equal(t, 3, summaries[0].MessageCount)
}

func TestSummaries_SortedByLastActivityDescending(t *testing.T) {
	t0 := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	log := writeLog(t,
		entryLine("old", "/work/alpha", "old work", t0),
		entryLine("new", "/work/beta", "new work", t0.Add(time.Hour)),
		entryLine("mid", "/work/gamma", "mid work", t0.Add(30*time.Minute)),
	)

	summaries := log.Summaries()
	require.Len(t, summaries, 3)
	assert.Equal(t, "new", summaries[0].SessionID)
	assert.Equal(t, "mid", summaries[1].SessionID)
	assert.Equal(t, "old", summaries[2].SessionID)
}
