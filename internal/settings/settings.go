// Package settings loads daemon configuration from file and environment.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Settings holds application configuration.
type Settings struct {
	HTTP  HTTPSettings
	State StateSettings
	Tools ToolSettings
	Scale ScaleSettings
}

// HTTPSettings holds the API server settings.
type HTTPSettings struct {
	Addr string
	MDNS bool
}

// StateSettings holds durable storage locations.
type StateSettings struct {
	Dir string
}

// ToolSettings names the external binaries the providers invoke.
type ToolSettings struct {
	Pactl     string
	ScaleTool string
}

// ScaleSettings bounds the scale actions.
type ScaleSettings struct {
	Presets        []int
	MaxTargetIndex int
}

// Load reads configuration from file and env. Env var overrides use prefix
// DESKSTATE_ (e.g. DESKSTATE_HTTP_ADDR).
func Load() (Settings, error) {
	v := viper.New()

	v.SetDefault("http.addr", ":8137")
	v.SetDefault("http.mdns", true)
	v.SetDefault("state.dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "deskstate"))
	v.SetDefault("tools.pactl", "pactl")
	v.SetDefault("tools.scale", "deskscale")
	v.SetDefault("scale.presets", []int{100, 125, 150, 175, 200, 225, 250})
	v.SetDefault("scale.max_target_index", 16)

	v.SetConfigType("toml")

	cfgPath := os.Getenv("DESKSTATE_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "deskstate"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("DESKSTATE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine; everything has defaults. An
		// explicitly named file that fails to read is not.
		var notFound viper.ConfigFileNotFoundError
		if cfgPath != "" {
			if _, statErr := os.Stat(cfgPath); statErr == nil {
				return Settings{}, fmt.Errorf("settings: read %s: %w", cfgPath, err)
			}
		} else if !errors.As(err, &notFound) {
			return Settings{}, fmt.Errorf("settings: %w", err)
		}
	}

	return Settings{
		HTTP: HTTPSettings{
			Addr: v.GetString("http.addr"),
			MDNS: v.GetBool("http.mdns"),
		},
		State: StateSettings{
			Dir: v.GetString("state.dir"),
		},
		Tools: ToolSettings{
			Pactl:     v.GetString("tools.pactl"),
			ScaleTool: v.GetString("tools.scale"),
		},
		Scale: ScaleSettings{
			Presets:        v.GetIntSlice("scale.presets"),
			MaxTargetIndex: v.GetInt("scale.max_target_index"),
		},
	}, nil
}
