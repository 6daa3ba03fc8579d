// Package config loads the relay and player configuration from a TOML file
// with environment variable overrides.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
)

// EnvConfigPath names the environment variable holding a config file path.
const EnvConfigPath = "PREVIEW_PLAYER_CONFIG"

// DefaultFile is looked up in the working directory when no path is given.
const DefaultFile = "preview-player.toml"

// Load reads configuration from $PREVIEW_PLAYER_CONFIG or ./preview-player.toml
// if either exists, then applies defaults and environment overrides.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := findConfigFile(); path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, err
		}
	}

	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)

	return cfg, nil
}

// LoadFrom reads configuration from a specific file path.
func LoadFrom(path string) (*Config, error) {
	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	cfg.ApplyDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

func findConfigFile() string {
	paths := []string{os.Getenv(EnvConfigPath), DefaultFile}
	for _, p := range paths {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func applyEnvOverrides(cfg *Config) {
	// Server
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Addr = ":" + v
	}

	// Spotify
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		cfg.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		cfg.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_TOKEN"); v != "" {
		cfg.Spotify.AccessToken = v
	}

	// Relay
	if v := os.Getenv("PREVIEW_RELAY_URL"); v != "" {
		cfg.Relay.URL = v
	}
	if v := os.Getenv("PREVIEW_RELAY_TIMEOUT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Relay.TimeoutSeconds = i
		}
	}

	// Cache
	if v := os.Getenv("DATABASE_PATH"); v != "" {
		cfg.Cache.DatabasePath = v
	}
	if v := os.Getenv("REDIS_ADDRESS"); v != "" {
		cfg.Cache.RedisAddr = v
	}

	// Log
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.Log.File = v
	}
}

// Timeout is the relay lookup timeout.
func (c RelayConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// TTL is how long preview lookups stay cached.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// TickInterval is the progress sampling cadence.
func (c PlayerConfig) TickInterval() time.Duration {
	return time.Duration(c.TickMS) * time.Millisecond
}
