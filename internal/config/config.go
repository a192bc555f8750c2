// Package config provides process configuration for the hub dashboard.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// Config holds all paths, ports, and tokens the dashboard needs. It is
// built once at process start and passed explicitly into components; no
// business logic reads the environment directly.
type Config struct {
	// Port the dashboard listens on.
	Port int

	// Gateway (agent gateway, WebSocket control port).
	GatewayHost      string
	GatewayPort      int
	GatewayToken     string
	GatewayConfig    string // JSON/JSONC config file
	GatewaySessions  string // sessions directory
	GatewayWorkspace string // workspace directory (memory/, OVERNIGHT.md)

	// Task hub and background worker REST APIs.
	TaskHubURL string
	WorkerURL  string
	WorkerDir  string // worker checkout, decides installed vs missing when stopped

	// Local inference server (models listing endpoint).
	InferenceURL string

	// Filesystem-backed subordinate systems under the projects root.
	DeskDir       string
	ScratchpadDir string
	TradeBotDir   string
	TradeBotPort  int

	// Project registry.
	ProjectsRoot string
	ProjectsFile string // JSON document with the projects array
	HistoryFile  string // append-only JSONL session log

	// Optional operator-maintained label rules for the activity feed.
	LabelRulesFile string

	// ProbeTimeout bounds a single TCP reachability check.
	ProbeTimeout time.Duration

	// AggregateTimeout bounds a full systems aggregation pass.
	AggregateTimeout time.Duration
}

// FromEnv builds a Config from environment variables with local defaults.
func FromEnv() Config {
	port, _ := strconv.Atoi(getEnvOrDefault("HUB_PORT", "8090"))
	gwPort, _ := strconv.Atoi(getEnvOrDefault("GATEWAY_PORT", "18800"))
	probeTimeout, _ := time.ParseDuration(getEnvOrDefault("HUB_PROBE_TIMEOUT", "1s"))
	aggTimeout, _ := time.ParseDuration(getEnvOrDefault("HUB_AGGREGATE_TIMEOUT", "6s"))

	home, _ := os.UserHomeDir()
	gatewayHome := getEnvOrDefault("GATEWAY_HOME", filepath.Join(home, ".gateway"))
	projectsRoot := getEnvOrDefault("PROJECTS_ROOT", filepath.Join(home, "projects"))
	dataDir := getEnvOrDefault("HUB_DATA_DIR", filepath.Join(projectsRoot, ".hub-data"))
	tradeBotPort, _ := strconv.Atoi(getEnvOrDefault("TRADEBOT_PORT", "4000"))

	return Config{
		Port:             port,
		GatewayHost:      getEnvOrDefault("GATEWAY_HOST", "127.0.0.1"),
		GatewayPort:      gwPort,
		GatewayToken:     os.Getenv("GATEWAY_TOKEN"),
		GatewayConfig:    getEnvOrDefault("GATEWAY_CONFIG", filepath.Join(gatewayHome, "gateway.json")),
		GatewaySessions:  getEnvOrDefault("GATEWAY_SESSIONS", filepath.Join(gatewayHome, "agents", "main", "sessions")),
		GatewayWorkspace: getEnvOrDefault("GATEWAY_WORKSPACE", filepath.Join(gatewayHome, "workspace")),
		TaskHubURL:       getEnvOrDefault("TASKHUB_URL", "http://127.0.0.1:8002"),
		WorkerURL:        getEnvOrDefault("WORKER_URL", "http://127.0.0.1:8095"),
		WorkerDir:        getEnvOrDefault("WORKER_DIR", filepath.Join(projectsRoot, "worker")),
		InferenceURL:     getEnvOrDefault("INFERENCE_URL", "http://127.0.0.1:11434"),
		DeskDir:          getEnvOrDefault("DESK_DIR", filepath.Join(projectsRoot, "trade-desk")),
		ScratchpadDir:    getEnvOrDefault("SCRATCHPAD_DIR", filepath.Join(projectsRoot, "scratchpad")),
		TradeBotDir:      getEnvOrDefault("TRADEBOT_DIR", filepath.Join(projectsRoot, "trade-bot")),
		TradeBotPort:     tradeBotPort,
		ProjectsRoot:     projectsRoot,
		ProjectsFile:     getEnvOrDefault("PROJECTS_FILE", filepath.Join(projectsRoot, "PROJECTS.json")),
		HistoryFile:      getEnvOrDefault("HISTORY_FILE", filepath.Join(dataDir, "history.jsonl")),
		LabelRulesFile:   os.Getenv("HUB_LABEL_RULES"),
		ProbeTimeout:     probeTimeout,
		AggregateTimeout: aggTimeout,
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
