package activity

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Rule maps a substring of a normalized project identity to a human
// label. Rules are operator-maintained data, not logic: the table is
// evaluated in order and the first match wins.
type Rule struct {
	Match string `yaml:"match" json:"match"`
	Label string `yaml:"label" json:"label"`
}

// Table resolves labels for project identities.
type Table struct {
	rules []Rule
}

// DefaultRules is the compiled-in label table, used when no rules file is
// configured.
func DefaultRules() []Rule {
	return []Rule{
		{Match: "trade-desk", Label: "Multi-Agent Trading Desk"},
		{Match: "scratchpad", Label: "Scratchpad Learning System"},
		{Match: "project-hub", Label: "Mission Control Dashboard"},
		{Match: "gateway", Label: "Agent Gateway Setup"},
		{Match: "trade-bot", Label: "Master Trade Bot"},
		{Match: "market-dashboard", Label: "Market Dashboard"},
		{Match: "worker", Label: "Background Worker"},
	}
}

// NewTable creates a table over the given rules, in priority order.
func NewTable(rules []Rule) *Table {
	return &Table{rules: rules}
}

// LoadTable reads rules from a YAML file. An empty path yields the
// compiled-in defaults.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return NewTable(DefaultRules()), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read label rules: %w", err)
	}
	var rules []Rule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse label rules: %w", err)
	}
	return NewTable(rules), nil
}

// Resolve returns the label for a normalized identity. The ordered table
// is consulted first; then a narrow secondary rule on the first message;
// the final fallback title-cases the identity itself.
func (t *Table) Resolve(identity, firstMessage string) string {
	for _, r := range t.rules {
		if strings.Contains(identity, r.Match) {
			return r.Label
		}
	}
	msg := strings.ToLower(firstMessage)
	if strings.Contains(msg, "security") || strings.Contains(msg, "harden") {
		return "Security Hardening"
	}
	if identity == "" {
		return "Unknown"
	}
	return titleCase(identity)
}

func titleCase(slug string) string {
	replaced := strings.NewReplacer("-", " ", "_", " ").Replace(slug)
	words := strings.Fields(replaced)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
