package gateway

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/tidwall/jsonc"
)

// Info is what the dashboard extracts from the gateway's config file:
// version, primary model, enabled plugins, and channel state. The file is
// operator-edited and may carry comments, so it is read as JSONC.
type Info struct {
	Version  string
	Model    string
	Plugins  []string
	Telegram string
}

// gatewayConfig mirrors the slices of the gateway config the dashboard
// cares about.
type gatewayConfig struct {
	Meta struct {
		LastTouchedVersion string `json:"lastTouchedVersion"`
	} `json:"meta"`
	Agents struct {
		Defaults struct {
			Model struct {
				Primary string `json:"primary"`
			} `json:"model"`
		} `json:"defaults"`
	} `json:"agents"`
	Plugins struct {
		Entries map[string]struct {
			Enabled bool `json:"enabled"`
		} `json:"entries"`
	} `json:"plugins"`
	Channels struct {
		Telegram struct {
			Enabled bool `json:"enabled"`
		} `json:"telegram"`
	} `json:"channels"`
}

// ReadConfig parses the gateway config file into an Info. Enabled plugin
// names are sorted so the result is stable across calls.
func ReadConfig(path string) (Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Info{}, fmt.Errorf("read gateway config: %w", err)
	}

	var cfg gatewayConfig
	if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
		return Info{}, fmt.Errorf("parse gateway config: %w", err)
	}

	info := Info{
		Version:  cfg.Meta.LastTouchedVersion,
		Model:    cfg.Agents.Defaults.Model.Primary,
		Telegram: "disabled",
	}
	if cfg.Channels.Telegram.Enabled {
		info.Telegram = "enabled"
	}
	for name, entry := range cfg.Plugins.Entries {
		if entry.Enabled {
			info.Plugins = append(info.Plugins, name)
		}
	}
	sort.Strings(info.Plugins)
	return info, nil
}
