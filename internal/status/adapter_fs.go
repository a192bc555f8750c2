package status

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/projectshome/hubd/internal/probe"
)

// DeskAdapter observes the trade desk workspace on disk. It has no
// process to probe; presence of the directory decides the state.
type DeskAdapter struct {
	dir string
}

// NewDeskAdapter creates the trade desk adapter rooted at dir.
func NewDeskAdapter(dir string) *DeskAdapter {
	return &DeskAdapter{dir: dir}
}

func (a *DeskAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "trade-desk",
		Name: "Trade Desk",
		Icon: "📈",
		Tags: []string{"trading", "workspace"},
	}
}

func (a *DeskAdapter) Describe(_ context.Context) SystemStatus {
	s := a.base()
	if !dirExists(a.dir) {
		s.State = StateMissing
		s.Detail = "Workspace not found"
		return s
	}
	s.State = StateInstalled
	entries, err := countLines(filepath.Join(a.dir, "journal", "journal.jsonl"))
	if err != nil {
		s.Detail = "Multi-agent trading desk"
		return s
	}
	s.Detail = fmt.Sprintf("%d journal entries", entries)
	return s
}

func (a *DeskAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateMissing
	s.Detail = fallbackDetail
	return s
}

// ScratchpadAdapter observes the scratchpad memory directory.
type ScratchpadAdapter struct {
	dir string
}

// NewScratchpadAdapter creates the scratchpad adapter rooted at dir.
func NewScratchpadAdapter(dir string) *ScratchpadAdapter {
	return &ScratchpadAdapter{dir: dir}
}

func (a *ScratchpadAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "scratchpad",
		Name: "Scratchpad",
		Icon: "📝",
		Tags: []string{"notes", "workspace"},
	}
}

func (a *ScratchpadAdapter) Describe(_ context.Context) SystemStatus {
	s := a.base()
	if !dirExists(a.dir) {
		s.State = StateMissing
		s.Detail = "Workspace not found"
		return s
	}
	s.State = StateInstalled
	notes := countGlob(filepath.Join(a.dir, "memory"), "*.md")
	s.Detail = fmt.Sprintf("%d memory files", notes)
	return s
}

func (a *ScratchpadAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateMissing
	s.Detail = fallbackDetail
	return s
}

// TradeBotAdapter observes the trade bot, which may be a running
// service or a dormant checkout. Port first, directory second.
type TradeBotAdapter struct {
	host         string
	port         int
	dir          string
	probeTimeout time.Duration
}

// TradeBotAdapterConfig configures the trade bot adapter.
type TradeBotAdapterConfig struct {
	Host         string
	Port         int
	Dir          string
	ProbeTimeout time.Duration
}

// NewTradeBotAdapter creates the trade bot adapter.
func NewTradeBotAdapter(cfg TradeBotAdapterConfig) *TradeBotAdapter {
	return &TradeBotAdapter{
		host:         cfg.Host,
		port:         cfg.Port,
		dir:          cfg.Dir,
		probeTimeout: cfg.ProbeTimeout,
	}
}

func (a *TradeBotAdapter) base() SystemStatus {
	return SystemStatus{
		ID:   "trade-bot",
		Name: "Trade Bot",
		Icon: "💹",
		Tags: []string{"trading", "automation"},
	}
}

func (a *TradeBotAdapter) Describe(_ context.Context) SystemStatus {
	s := a.base()
	if probe.TCP(a.host, a.port, a.probeTimeout) {
		s.State = StateOnline
		s.Port = a.port
		s.Detail = "Bot running"
		return s
	}
	if dirExists(a.dir) {
		s.State = StateInstalled
		s.Detail = "Installed, not running"
		return s
	}
	s.State = StateMissing
	s.Detail = "Not installed"
	return s
}

func (a *TradeBotAdapter) Fallback() SystemStatus {
	s := a.base()
	s.State = StateMissing
	s.Detail = fallbackDetail
	return s
}
