// Package gateway observes the agent gateway: probing its control port,
// reading its config and workspace artifacts, and forwarding chat
// messages to its completions endpoint. The gateway itself is an
// external collaborator; everything here is read-and-forward.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/projectshome/hubd/internal/bridge"
	"github.com/projectshome/hubd/internal/probe"
)

// defaultModel is used for chat sends when the gateway config does not
// name a primary model.
const defaultModel = "qwen2.5:14b-instruct"

// Config configures the gateway client.
type Config struct {
	Host         string
	Port         int
	Token        string
	ConfigPath   string
	SessionsDir  string
	WorkspaceDir string
	ProbeTimeout time.Duration
	Logger       zerolog.Logger
}

// Client reads gateway state and forwards chat messages.
type Client struct {
	cfg    Config
	chat   *bridge.Target
	logger zerolog.Logger
}

// NewClient creates a gateway client. Chat sends go through a bridge
// target so they share the dispatch timeout budget and error envelope.
func NewClient(cfg Config) *Client {
	chat := bridge.NewTarget(bridge.TargetConfig{
		Name:    "gateway",
		BaseURL: fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port),
		Token:   cfg.Token,
		Logger:  cfg.Logger,
	})
	return &Client{cfg: cfg, chat: chat, logger: cfg.Logger}
}

// Health is the enriched gateway health view.
type Health struct {
	Status    string   `json:"status"`
	Port      int      `json:"port"`
	Version   string   `json:"version,omitempty"`
	Model     string   `json:"model,omitempty"`
	Plugins   []string `json:"plugins"`
	Telegram  string   `json:"telegram,omitempty"`
	Workspace string   `json:"workspace"`
}

// Health probes the gateway port and, when it is open, enriches the
// result from the config file. Config read failures leave the probed
// status untouched.
func (c *Client) Health(_ context.Context) Health {
	h := Health{
		Status:    "offline",
		Port:      c.cfg.Port,
		Plugins:   []string{},
		Workspace: c.cfg.WorkspaceDir,
	}
	if !probe.TCP(c.cfg.Host, c.cfg.Port, c.cfg.ProbeTimeout) {
		return h
	}
	h.Status = "online"

	info, err := ReadConfig(c.cfg.ConfigPath)
	if err != nil {
		c.logger.Debug().Err(err).Msg("gateway config unreadable")
		return h
	}
	h.Version = info.Version
	h.Model = info.Model
	h.Telegram = info.Telegram
	if info.Plugins != nil {
		h.Plugins = info.Plugins
	}
	return h
}

// SessionInfo is one recent gateway session.
type SessionInfo struct {
	ID       string `json:"id"`
	Updated  string `json:"updated,omitempty"`
	Messages int    `json:"messages"`
}

// Activity is the digest of recent gateway workspace activity.
type Activity struct {
	Sessions       []SessionInfo   `json:"sessions"`
	DailyNotes     []string        `json:"daily_notes"`
	OvernightTasks []string        `json:"overnight_tasks"`
	Heartbeat      json.RawMessage `json:"heartbeat,omitempty"`
}

// Activity reads recent sessions, today's daily-note bullets, queued
// overnight tasks, and the heartbeat state. Every source is best-effort;
// a missing or malformed file contributes an empty section.
func (c *Client) Activity(_ context.Context) Activity {
	return Activity{
		Sessions:       c.readSessions(),
		DailyNotes:     c.readDailyNotes(),
		OvernightTasks: c.readOvernightTasks(),
		Heartbeat:      c.readHeartbeat(),
	}
}

// sessionRecord covers both shapes the sessions file has shipped with:
// a map keyed by session id, or a list of records with their own ids.
type sessionRecord struct {
	ID           string `json:"id"`
	UpdatedAt    string `json:"updatedAt"`
	MessageCount int    `json:"messageCount"`
}

func (c *Client) readSessions() []SessionInfo {
	const limit = 10
	sessions := []SessionInfo{}

	data, err := os.ReadFile(filepath.Join(c.cfg.SessionsDir, "sessions.json"))
	if err != nil {
		return sessions
	}

	var byID map[string]sessionRecord
	if err := json.Unmarshal(data, &byID); err == nil {
		for id, rec := range byID {
			sessions = append(sessions, SessionInfo{ID: id, Updated: rec.UpdatedAt, Messages: rec.MessageCount})
			if len(sessions) == limit {
				break
			}
		}
		return sessions
	}

	var asList []sessionRecord
	if err := json.Unmarshal(data, &asList); err == nil {
		for _, rec := range asList {
			id := rec.ID
			if id == "" {
				id = "?"
			}
			sessions = append(sessions, SessionInfo{ID: id, Updated: rec.UpdatedAt, Messages: rec.MessageCount})
			if len(sessions) == limit {
				break
			}
		}
	}
	return sessions
}

func (c *Client) readDailyNotes() []string {
	today := time.Now().Format("2006-01-02")
	data, err := os.ReadFile(filepath.Join(c.cfg.WorkspaceDir, "memory", today+".md"))
	if err != nil {
		return []string{}
	}

	var bullets []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			bullets = append(bullets, line)
		}
	}
	// Last ten entries: the tail of the note is the most recent.
	if len(bullets) > 10 {
		bullets = bullets[len(bullets)-10:]
	}
	if bullets == nil {
		bullets = []string{}
	}
	return bullets
}

func (c *Client) readOvernightTasks() []string {
	data, err := os.ReadFile(filepath.Join(c.cfg.WorkspaceDir, "OVERNIGHT.md"))
	if err != nil {
		return []string{}
	}

	tasks := []string{}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- [") {
			tasks = append(tasks, line)
			if len(tasks) == 10 {
				break
			}
		}
	}
	return tasks
}

func (c *Client) readHeartbeat() json.RawMessage {
	data, err := os.ReadFile(filepath.Join(c.cfg.WorkspaceDir, "memory", "heartbeat-state.json"))
	if err != nil || !json.Valid(data) {
		return nil
	}
	return data
}

// chatRequest is the completions payload sent to the gateway.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Send forwards a single user message to the gateway's chat completions
// endpoint and returns the response or an error envelope. The model comes
// from the gateway config when readable.
func (c *Client) Send(ctx context.Context, message string) json.RawMessage {
	model := defaultModel
	if info, err := ReadConfig(c.cfg.ConfigPath); err == nil && info.Model != "" {
		model = info.Model
	}

	payload, err := json.Marshal(chatRequest{
		Model:    model,
		Messages: []chatMessage{{Role: "user", Content: message}},
	})
	if err != nil {
		raw, _ := json.Marshal(bridge.ErrorEnvelope{Error: err.Error()})
		return raw
	}
	return c.chat.Forward(ctx, "POST", "/v1/chat/completions", "", bytes.NewReader(payload), bridge.ClassDispatch)
}

// QueueOvernight appends a task to the workspace overnight list, creating
// the file on first use. Duplicate tasks are not appended twice.
func (c *Client) QueueOvernight(task string) error {
	task = strings.TrimSpace(task)
	if task == "" {
		return fmt.Errorf("task required")
	}

	path := filepath.Join(c.cfg.WorkspaceDir, "OVERNIGHT.md")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	existing := "# Overnight Tasks\n\n"
	if data, err := os.ReadFile(path); err == nil {
		existing = string(data)
	}

	line := "- [ ] " + task + "\n"
	if strings.Contains(existing, line) {
		return nil
	}
	return os.WriteFile(path, []byte(existing+line), 0o644)
}
