// Package bridge forwards inbound requests under reserved path prefixes
// to a subordinate system's REST API. Paths are rewritten through a
// declarative per-target rule set, timeouts come from the call class, and
// both transport and upstream HTTP failures are normalized into one flat
// error envelope so callers never see a protocol-specific failure. A
// forward is a single attempt; retry policy, if any, belongs to the
// caller.
package bridge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/upstream"
)

// maxDetailLen bounds the upstream body echoed back in an envelope.
const maxDetailLen = 500

// CallClass selects the timeout budget for a forwarded call.
type CallClass int

// Call classes, from cheap health checks to long-running dispatch calls.
const (
	ClassHealth CallClass = iota
	ClassDefault
	ClassDispatch
)

// Timeouts holds the per-class timeout budgets for one target.
type Timeouts struct {
	Health   time.Duration
	Default  time.Duration
	Dispatch time.Duration
}

// DefaultTimeouts returns the standard budgets: short for health checks,
// long for dispatch calls that run substantial downstream work.
func DefaultTimeouts() Timeouts {
	return Timeouts{
		Health:   5 * time.Second,
		Default:  30 * time.Second,
		Dispatch: 300 * time.Second,
	}
}

func (t Timeouts) forClass(class CallClass) time.Duration {
	switch class {
	case ClassHealth:
		return t.Health
	case ClassDispatch:
		return t.Dispatch
	default:
		return t.Default
	}
}

// Rule rewrites an inbound path prefix to the target's own namespace.
// Rules are evaluated in order; the first rule whose prefix matches and
// whose guard (if any) accepts the remainder wins.
type Rule struct {
	Prefix      string
	Replacement string

	// When, if set, must accept the path remainder after Prefix for the
	// rule to apply. Used for path-shape special cases such as
	// singular-resource GETs.
	When func(rest string) bool
}

// SingularResource accepts a remainder that names exactly one resource:
// a non-empty segment with no further path separators.
func SingularResource(rest string) bool {
	return rest != "" && !strings.Contains(rest, "/")
}

// ErrorEnvelope is the uniform failure shape returned for bridged calls.
type ErrorEnvelope struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// TargetConfig configures one bridged subordinate system.
type TargetConfig struct {
	Name     string
	BaseURL  string
	Token    string // attached as a bearer token when non-empty
	Rules    []Rule
	Timeouts Timeouts

	// Client overrides the HTTP client, mainly for tests. When nil a
	// single-attempt client is used; the bridge never retries.
	Client *upstream.Client

	Logger zerolog.Logger
}

// Target forwards calls to one subordinate system. Immutable for the
// process lifetime.
type Target struct {
	name     string
	baseURL  string
	token    string
	rules    []Rule
	timeouts Timeouts
	client   *upstream.Client
	logger   zerolog.Logger
}

// NewTarget creates a bridge target from the given configuration.
func NewTarget(cfg TargetConfig) *Target {
	timeouts := cfg.Timeouts
	if timeouts.Default == 0 {
		timeouts = DefaultTimeouts()
	}
	client := cfg.Client
	if client == nil {
		client = upstream.NewClient(upstream.SingleAttemptConfig(cfg.Name))
	}
	return &Target{
		name:     cfg.Name,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		rules:    cfg.Rules,
		timeouts: timeouts,
		client:   client,
		logger:   cfg.Logger,
	}
}

// Name returns the target's identifier.
func (t *Target) Name() string {
	return t.name
}

// Rewrite maps an inbound path to the target's own path namespace. A path
// no rule matches passes through unchanged.
func (t *Target) Rewrite(inboundPath string) string {
	for _, rule := range t.rules {
		rest, ok := strings.CutPrefix(inboundPath, rule.Prefix)
		if !ok {
			continue
		}
		if rule.When != nil && !rule.When(rest) {
			continue
		}
		return rule.Replacement + rest
	}
	return inboundPath
}

// Forward rewrites the inbound path, performs exactly one upstream call
// within the class's timeout budget, and returns either the upstream JSON
// body or a marshaled ErrorEnvelope. The query string is preserved
// verbatim. The returned message is always valid JSON.
func (t *Target) Forward(ctx context.Context, method, inboundPath, rawQuery string, body io.Reader, class CallClass) json.RawMessage {
	upstreamPath := t.Rewrite(inboundPath)
	url := t.baseURL + upstreamPath
	if rawQuery != "" {
		url += "?" + rawQuery
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeouts.forClass(class))
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return envelope(err.Error(), "")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if t.token != "" {
		req.Header.Set("Authorization", "Bearer "+t.token)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		t.logger.Warn().Err(err).
			Str("target", t.name).
			Str("path", upstreamPath).
			Msg("bridge transport failure")
		return envelope(err.Error(), "")
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope(err.Error(), "")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope("HTTP "+strconv.Itoa(resp.StatusCode), truncate(string(payload), maxDetailLen))
	}

	if !json.Valid(payload) {
		return envelope("upstream returned invalid JSON", truncate(string(payload), maxDetailLen))
	}
	return payload
}

func envelope(errMsg, detail string) json.RawMessage {
	raw, _ := json.Marshal(ErrorEnvelope{Error: errMsg, Detail: detail})
	return raw
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
