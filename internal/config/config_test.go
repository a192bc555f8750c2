package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	cfg := FromEnv()

	assert.Equal(t, 8090, cfg.Port)
	assert.Equal(t, "127.0.0.1", cfg.GatewayHost)
	assert.Equal(t, 18800, cfg.GatewayPort)
	assert.Equal(t, "http://127.0.0.1:8002", cfg.TaskHubURL)
	assert.Equal(t, "http://127.0.0.1:8095", cfg.WorkerURL)
	assert.Equal(t, "http://127.0.0.1:11434", cfg.InferenceURL)
	assert.Equal(t, 4000, cfg.TradeBotPort)
	assert.Equal(t, time.Second, cfg.ProbeTimeout)
	assert.Equal(t, 6*time.Second, cfg.AggregateTimeout)
	assert.NotEmpty(t, cfg.ProjectsFile)
	assert.NotEmpty(t, cfg.HistoryFile)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("HUB_PORT", "9999")
	t.Setenv("TASKHUB_URL", "http://10.0.0.5:8002")
	t.Setenv("HUB_PROBE_TIMEOUT", "250ms")
	t.Setenv("PROJECTS_ROOT", "/srv/projects")

	cfg := FromEnv()

	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "http://10.0.0.5:8002", cfg.TaskHubURL)
	assert.Equal(t, 250*time.Millisecond, cfg.ProbeTimeout)
	assert.Equal(t, "/srv/projects", cfg.ProjectsRoot)
	assert.Contains(t, cfg.ProjectsFile, "/srv/projects")
	assert.Contains(t, cfg.DeskDir, "/srv/projects")
}
