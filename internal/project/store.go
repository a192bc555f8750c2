// Package project owns the on-disk project registry: a single JSON
// document with a projects array. The reconciliation engine only reads
// path, last_active, and description; the mutating operations exist for
// the dashboard's registry management endpoints. Writes are infrequent
// and operator-driven, so a process-local mutex is the only guard.
package project

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// ErrInvalidIndex is returned for an out-of-range project index.
var ErrInvalidIndex = errors.New("invalid project index")

// Project is one registry entry. LastActive is kept as the raw string the
// document carries: either a bare date or a full timestamp.
type Project struct {
	Name        string   `json:"name"`
	Path        string   `json:"path"`
	Tech        string   `json:"tech,omitempty"`
	Status      string   `json:"status"`
	Source      string   `json:"source"`
	Description string   `json:"description"`
	LastActive  string   `json:"last_active"`
	Pinned      bool     `json:"pinned"`
	Tags        []string `json:"tags"`
}

// Document is the whole registry file.
type Document struct {
	Projects []Project      `json:"projects"`
	Metadata map[string]any `json:"metadata"`
}

// Stats summarizes the registry for the dashboard header.
type Stats struct {
	TotalProjects  int `json:"totalProjects"`
	ActiveProjects int `json:"activeProjects"`
	PinnedProjects int `json:"pinnedProjects"`
	TotalSessions  int `json:"totalSessions"`
	TotalMessages  int `json:"totalMessages"`
}

// Store reads and writes the registry document.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a store over the given document path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the registry. A missing file is a valid empty registry.
func (s *Store) Load() (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Document, error) {
	doc := Document{Projects: []Project{}, Metadata: map[string]any{}}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("read registry: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{Projects: []Project{}, Metadata: map[string]any{}}, fmt.Errorf("parse registry: %w", err)
	}
	if doc.Projects == nil {
		doc.Projects = []Project{}
	}
	if doc.Metadata == nil {
		doc.Metadata = map[string]any{}
	}
	return doc, nil
}

func (s *Store) save(doc Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return nil
}

// Add appends a project, filling defaults for omitted fields, and returns
// the updated document.
func (s *Store) Add(p Project) (Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return doc, err
	}
	if p.Status == "" {
		p.Status = "active"
	}
	if p.Source == "" {
		p.Source = "manual"
	}
	if p.LastActive == "" {
		p.LastActive = time.Now().UTC().Format(time.RFC3339)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	doc.Projects = append(doc.Projects, p)
	if err := s.save(doc); err != nil {
		return doc, err
	}
	return doc, nil
}

// Update merges the given fields into the project at index. Unknown
// fields are ignored; the document schema stays authoritative.
func (s *Store) Update(index int, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if index < 0 || index >= len(doc.Projects) {
		return ErrInvalidIndex
	}

	merged, err := mergeFields(doc.Projects[index], fields)
	if err != nil {
		return err
	}
	doc.Projects[index] = merged
	return s.save(doc)
}

// Delete removes the project at index and returns its name.
func (s *Store) Delete(index int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", err
	}
	if index < 0 || index >= len(doc.Projects) {
		return "", ErrInvalidIndex
	}
	removed := doc.Projects[index]
	doc.Projects = append(doc.Projects[:index], doc.Projects[index+1:]...)
	if err := s.save(doc); err != nil {
		return "", err
	}
	return removed.Name, nil
}

// Import appends the given projects in one write and returns how many
// were added.
func (s *Store) Import(projects []Project) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return 0, err
	}
	doc.Projects = append(doc.Projects, projects...)
	if err := s.save(doc); err != nil {
		return 0, err
	}
	return len(projects), nil
}

// mergeFields round-trips the project through JSON so loosely-typed field
// updates land on the right struct fields.
func mergeFields(p Project, fields map[string]any) (Project, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return p, err
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return p, err
	}
	for k, v := range fields {
		asMap[k] = v
	}
	merged, err := json.Marshal(asMap)
	if err != nil {
		return p, err
	}
	var out Project
	if err := json.Unmarshal(merged, &out); err != nil {
		return p, fmt.Errorf("merge fields: %w", err)
	}
	return out, nil
}

// techMarkers maps well-known build files to a technology name.
var techMarkers = []struct {
	file string
	tech string
}{
	{"package.json", "Node.js"},
	{"tsconfig.json", "TypeScript"},
	{"pyproject.toml", "Python"},
	{"requirements.txt", "Python"},
	{"setup.py", "Python"},
	{"Cargo.toml", "Rust"},
	{"go.mod", "Go"},
}

// DetectTech inspects a directory for build-file markers and returns a
// comma-separated technology list, or "Unknown".
func DetectTech(dir string) string {
	var techs []string
	seen := map[string]bool{}
	for _, m := range techMarkers {
		if seen[m.tech] {
			continue
		}
		if _, err := os.Stat(filepath.Join(dir, m.file)); err == nil {
			techs = append(techs, m.tech)
			seen[m.tech] = true
		}
	}
	if len(techs) == 0 {
		return "Unknown"
	}
	return strings.Join(techs, ", ")
}

// Scan walks the projects root and returns entries for directories not
// yet present in the registry. Hidden directories and the hub's own data
// directory are skipped. The registry itself is not modified.
func (s *Store) Scan(root string) ([]Project, error) {
	doc, err := s.Load()
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool, len(doc.Projects))
	for _, p := range doc.Projects {
		known[strings.ToLower(p.Path)] = true
	}

	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read projects root: %w", err)
	}

	var found []Project
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") || name == "project-hub" {
			continue
		}
		path := filepath.Join(root, name)
		if known[strings.ToLower(path)] {
			continue
		}

		lastActive := ""
		if info, err := entry.Info(); err == nil {
			lastActive = info.ModTime().UTC().Format(time.RFC3339)
		}
		found = append(found, Project{
			Name:        titleCase(name),
			Path:        path,
			Tech:        DetectTech(path),
			Status:      "unknown",
			Source:      "auto-detected",
			Description: fmt.Sprintf("Auto-detected project in %s/", name),
			LastActive:  lastActive,
			Tags:        []string{},
		})
	}
	return found, nil
}

// CountStats builds dashboard counters from the registry and the session
// summaries' message counts.
func CountStats(doc Document, sessionCount, messageCount int) Stats {
	stats := Stats{
		TotalProjects: len(doc.Projects),
		TotalSessions: sessionCount,
		TotalMessages: messageCount,
	}
	for _, p := range doc.Projects {
		if p.Status == "active" || p.Status == "in_progress" {
			stats.ActiveProjects++
		}
		if p.Pinned {
			stats.PinnedProjects++
		}
	}
	return stats
}

// titleCase turns a directory slug into a display name: separators become
// spaces and each word is capitalized.
func titleCase(slug string) string {
	replaced := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	words := strings.Fields(replaced)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
