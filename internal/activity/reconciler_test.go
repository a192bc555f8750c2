package activity_test

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/projectshome/hubd/internal/activity"
	"github.com/projectshome/hubd/internal/project"
	"github.com/projectshome/hubd/internal/session"
)

type fixture struct {
	log   *session.Log
	store *project.Store
}

func newFixture(t *testing.T, logLines []string, projects []project.Project) fixture {
	t.Helper()
	dir := t.TempDir()

	logPath := filepath.Join(dir, "history.jsonl")
	content := ""
	if len(logLines) > 0 {
		content = strings.Join(logLines, "\n") + "\n"
	}
	require.NoError(t, os.WriteFile(logPath, []byte(content), 0o644))

	storePath := filepath.Join(dir, "PROJECTS.json")
	doc := project.Document{Projects: projects, Metadata: map[string]any{}}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(storePath, raw, 0o644))

	return fixture{
		log:   session.NewLog(logPath, zerolog.Nop()),
		store: project.NewStore(storePath),
	}
}

func newReconciler(fx fixture, now time.Time) *activity.Reconciler {
	return activity.NewReconciler(activity.ReconcilerConfig{
		Log:    fx.log,
		Store:  fx.store,
		Now:    func() time.Time { return now },
		Logger: zerolog.Nop(),
	})
}

func entryLine(sessionID, proj, display string, ts time.Time) string {
	return fmt.Sprintf(`{"sessionId":%q,"project":%q,"display":%q,"timestamp":%d}`,
		sessionID, proj, display, ts.UnixMilli())
}

func TestReconcile_SessionProvenanceWinsOverMetadata(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	fx := newFixture(t,
		[]string{entryLine("s1", "/work/alpha", "building alpha", now.Add(-time.Hour))},
		[]project.Project{{
			Name:        "Alpha",
			Path:        "/work/alpha",
			Description: "alpha from registry",
			LastActive:  now.Add(-2 * time.Hour).Format(time.RFC3339),
		}},
	)

	records := newReconciler(fx, now).Reconcile()
	require.Len(t, records, 1)
	assert.Equal(t, "alpha", records[0].Identity)
	assert.Equal(t, activity.ProvenanceSessionLog, records[0].Provenance)
	assert.Equal(t, "building alpha", records[0].FirstMessage)
}

func TestReconcile_MetadataFillsGaps(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	fx := newFixture(t,
		[]string{entryLine("s1", "/work/alpha", "alpha work", now.Add(-time.Hour))},
		[]project.Project{{
			Name:        "Beta",
			Path:        "/work/beta",
			Description: "beta description",
			LastActive:  now.Add(-3 * time.Hour).Format(time.RFC3339),
		}},
	)

	records := newReconciler(fx, now).Reconcile()
	require.Len(t, records, 2)
	assert.Equal(t, "alpha", records[0].Identity)
	assert.Equal(t, "beta", records[1].Identity)
	assert.Equal(t, activity.ProvenanceProjectMetadata, records[1].Provenance)
	assert.Equal(t, "beta description", records[1].FirstMessage)
	assert.Zero(t, records[1].MessageCount)
}

func TestReconcile_AtMostOneRecordPerIdentity(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	// Two sessions on the same project plus a registry entry: one record.
	fx := newFixture(t,
		[]string{
			entryLine("s1", "/work/alpha", "first session", now.Add(-4*time.Hour)),
			entryLine("s2", "/work/alpha", "second session", now.Add(-time.Hour)),
		},
		[]project.Project{{
			Name:       "Alpha",
			Path:       `D:\Work\Alpha\`,
			LastActive: now.Add(-time.Hour).Format(time.RFC3339),
		}},
	)

	records := newReconciler(fx, now).Reconcile()
	require.Len(t, records, 1)
	assert.Equal(t, "alpha", records[0].Identity)
	assert.Equal(t, activity.ProvenanceSessionLog, records[0].Provenance)
	// The most recent session wins the slot.
	assert.Equal(t, "second session", records[0].FirstMessage)
}

func TestReconcile_WindowExcludesStaleActivity(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	fx := newFixture(t,
		[]string{entryLine("s1", "/work/old", "ancient work", now.Add(-72*time.Hour))},
		[]project.Project{{
			Name:       "Stale",
			Path:       "/work/stale",
			LastActive: now.Add(-49 * time.Hour).Format(time.RFC3339),
		}},
	)

	assert.Empty(t, newReconciler(fx, now).Reconcile())
}

func TestReconcile_BareDateWindowing(t *testing.T) {
	fx := newFixture(t, nil, []project.Project{{
		Name:       "Dated",
		Path:       "/work/dated",
		LastActive: "2024-01-01",
	}})

	// 2024-01-01 is treated as 23:59:59Z, inside a 48h window on Jan 2.
	inside := newReconciler(fx, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)).Reconcile()
	require.Len(t, inside, 1)
	assert.Equal(t, "dated", inside[0].Identity)

	outside := newReconciler(fx, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)).Reconcile()
	assert.Empty(t, outside)
}

func TestReconcile_UnparseableTimestampExcluded(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	fx := newFixture(t, nil, []project.Project{
		{Name: "Broken", Path: "/work/broken", LastActive: "not-a-date"},
		{Name: "Missing", Path: "/work/missing"},
		{Name: "Good", Path: "/work/good", LastActive: now.Add(-time.Hour).Format(time.RFC3339)},
	})

	records := newReconciler(fx, now).Reconcile()
	require.Len(t, records, 1)
	assert.Equal(t, "good", records[0].Identity)
}

func TestReconcile_Idempotent(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	fx := newFixture(t,
		[]string{
			entryLine("s1", "/work/alpha", "alpha", now.Add(-time.Hour)),
			entryLine("s2", "/work/beta", "beta", now.Add(-2*time.Hour)),
		},
		[]project.Project{{
			Name:       "Gamma",
			Path:       "/work/gamma",
			LastActive: now.Add(-3 * time.Hour).Format(time.RFC3339),
		}},
	)

	r := newReconciler(fx, now)
	assert.Equal(t, r.Reconcile(), r.Reconcile())
}

func TestNormalizeIdentity(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{`D:\Projects\Trade-Desk`, "trade-desk"},
		{"/home/ops/projects/alpha/", "alpha"},
		{"alpha", "alpha"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, activity.NormalizeIdentity(tt.path), tt.path)
	}
}

func TestParseLastActive(t *testing.T) {
	ts, ok := activity.ParseLastActive("2024-01-01")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC), ts)

	ts, ok = activity.ParseLastActive("2024-01-01T10:30:00Z")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), ts)

	// A naive timestamp is taken as UTC.
	ts, ok = activity.ParseLastActive("2024-01-01T10:30:00")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC), ts)

	_, ok = activity.ParseLastActive("")
	assert.False(t, ok)
	_, ok = activity.ParseLastActive("garbage")
	assert.False(t, ok)
}

func TestTable_Resolve(t *testing.T) {
	table := activity.NewTable(activity.DefaultRules())

	assert.Equal(t, "Multi-Agent Trading Desk", table.Resolve("trade-desk", ""))
	assert.Equal(t, "Security Hardening", table.Resolve("some-repo", "please harden the login flow"))
	assert.Equal(t, "My New Thing", table.Resolve("my-new_thing", "regular work"))
	assert.Equal(t, "Unknown", table.Resolve("", ""))
}

func TestTable_FirstMatchWins(t *testing.T) {
	table := activity.NewTable([]activity.Rule{
		{Match: "desk", Label: "First"},
		{Match: "trade-desk", Label: "Second"},
	})
	assert.Equal(t, "First", table.Resolve("trade-desk", ""))
}

func TestLoadTable_FromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- match: alpha\n  label: Alpha Project\n"), 0o644))

	table, err := activity.LoadTable(path)
	require.NoError(t, err)
	assert.Equal(t, "Alpha Project", table.Resolve("alpha", ""))
}

func TestLoadTable_EmptyPathUsesDefaults(t *testing.T) {
	table, err := activity.LoadTable("")
	require.NoError(t, err)
	assert.Equal(t, "Mission Control Dashboard", table.Resolve("project-hub", ""))
}
