package config

import (
	"fmt"
	"time"
)

type Config struct {
	API  APIConfig
	Poll PollConfig
	Log  LogConfig
}

type APIConfig struct {
	BaseURL string
}

type PollConfig struct {
	// Interval is a duration string ("3s"); parsed via IntervalDuration.
	Interval    string
	MaxAttempts int
}

type LogConfig struct {
	Level string
}

func defaults() Config {
	return Config{
		API: APIConfig{
			BaseURL: "http://127.0.0.1:8000",
		},
		Poll: PollConfig{
			Interval:    "3s",
			MaxAttempts: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// IntervalDuration parses Poll.Interval, falling back to 3s on bad input.
func (p PollConfig) IntervalDuration() time.Duration {
	d, err := time.ParseDuration(p.Interval)
	if err != nil || d <= 0 {
		return 3 * time.Second
	}
	return d
}

// Load reads configuration from the platform-native backend and environment
// variables.
//
// On macOS the backend is UserDefaults (domain: com.flyerdeck.flyerctl); on
// Linux and other platforms it is a JSON file at
// $XDG_CONFIG_HOME/flyerctl/config.json. Environment variables (FLYERCTL_*)
// override backend values everywhere. The bearer token is not part of
// Config; see GetAPIToken.
func Load() (Config, error) {
	return loadWith(newPlatformBackend())
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)

	if cfg.API.BaseURL == "" {
		return Config{}, fmt.Errorf("missing required config: api.base_url. " +
			"Set it with `flyerctl config set api.base_url <url>` or the FLYERCTL_API_BASE_URL environment variable")
	}

	return cfg, nil
}
