// Package activity reconciles independent activity records, live
// session-log summaries and static project-registry timestamps, into one
// deduplicated, time-windowed feed. Session data is fresher and richer,
// so it always wins over registry metadata for the same project.
package activity

import (
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/project"
	"github.com/projectshome/hubd/internal/session"
)

// Window is the recency horizon for the activity feed.
const Window = 48 * time.Hour

// Provenance names the data source that produced a record.
type Provenance string

// Record provenances. Session-log records take precedence in dedup.
const (
	ProvenanceSessionLog      Provenance = "session-log"
	ProvenanceProjectMetadata Provenance = "project-metadata"
)

// Record is one reconciled activity entry. Within a single pass there is
// at most one record per normalized identity.
type Record struct {
	Identity      string     `json:"identity"`
	Label         string     `json:"label"`
	FirstMessage  string     `json:"firstMessage"`
	MessageCount  int        `json:"messageCount"`
	LastTimestamp time.Time  `json:"lastTimestamp"`
	Provenance    Provenance `json:"provenance"`
}

// Reconciler merges session summaries with project metadata. It holds no
// cross-request state; every pass re-reads from source.
type Reconciler struct {
	log    *session.Log
	store  *project.Store
	table  *Table
	window time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

// ReconcilerConfig configures a Reconciler.
type ReconcilerConfig struct {
	Log    *session.Log
	Store  *project.Store
	Table  *Table
	Window time.Duration    // defaults to Window
	Now    func() time.Time // defaults to time.Now, injectable for tests
	Logger zerolog.Logger
}

// NewReconciler creates a reconciler from the given configuration.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	window := cfg.Window
	if window == 0 {
		window = Window
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	table := cfg.Table
	if table == nil {
		table = NewTable(DefaultRules())
	}
	return &Reconciler{
		log:    cfg.Log,
		store:  cfg.Store,
		table:  table,
		window: window,
		now:    now,
		logger: cfg.Logger,
	}
}

// Reconcile builds the activity feed: windowed session summaries first,
// then registry projects not already covered, sorted by last activity
// descending. The result is deterministic for identical inputs at the
// same instant.
func (r *Reconciler) Reconcile() []Record {
	now := r.now().UTC()
	records := make([]Record, 0)
	seen := make(map[string]bool)

	for _, s := range session.Summarize(r.log.Load()) {
		if now.Sub(s.LastTimestamp) >= r.window {
			continue
		}
		identity := NormalizeIdentity(s.Project)
		if seen[identity] {
			continue
		}
		seen[identity] = true
		records = append(records, Record{
			Identity:      identity,
			Label:         r.table.Resolve(identity, s.FirstMessage),
			FirstMessage:  s.FirstMessage,
			MessageCount:  s.MessageCount,
			LastTimestamp: s.LastTimestamp,
			Provenance:    ProvenanceSessionLog,
		})
	}

	doc, err := r.store.Load()
	if err != nil {
		r.logger.Warn().Err(err).Msg("project registry unreadable, session data only")
	}
	for _, p := range doc.Projects {
		identity := NormalizeIdentity(p.Path)
		if seen[identity] {
			continue
		}
		// Missing or unparseable timestamps are outside the window.
		lastActive, ok := ParseLastActive(p.LastActive)
		if !ok || now.Sub(lastActive) >= r.window {
			continue
		}
		seen[identity] = true
		records = append(records, Record{
			Identity:      identity,
			Label:         r.table.Resolve(identity, ""),
			FirstMessage:  p.Description,
			LastTimestamp: lastActive,
			Provenance:    ProvenanceProjectMetadata,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].LastTimestamp.After(records[j].LastTimestamp)
	})
	return records
}

// NormalizeIdentity reduces a project path to a comparable slug: forward
// slashes, trailing separators stripped, final path segment, lower-cased.
func NormalizeIdentity(path string) string {
	if path == "" {
		return ""
	}
	p := strings.ReplaceAll(path, `\`, "/")
	p = strings.TrimRight(p, "/")
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		p = p[idx+1:]
	}
	return strings.ToLower(p)
}

// ParseLastActive parses a registry last_active value. A bare date is
// treated as end of that day UTC so it stays inside the window for the
// following 48 hours; a timestamp without a zone is taken as UTC. The
// second return is false when the value cannot be parsed.
func ParseLastActive(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	if len(value) <= 10 {
		day, err := time.Parse("2006-01-02", value)
		if err != nil {
			return time.Time{}, false
		}
		return day.Add(23*time.Hour + 59*time.Minute + 59*time.Second), true
	}
	if ts, err := time.Parse(time.RFC3339, value); err == nil {
		return ts.UTC(), true
	}
	if ts, err := time.Parse("2006-01-02T15:04:05", value); err == nil {
		return ts.UTC(), true
	}
	return time.Time{}, false
}
