package config

// Config is the root configuration structure.
type Config struct {
	Server  ServerConfig  `toml:"server"`
	Spotify SpotifyConfig `toml:"spotify"`
	Relay   RelayConfig   `toml:"relay"`
	Cache   CacheConfig   `toml:"cache"`
	Player  PlayerConfig  `toml:"player"`
	Log     LogConfig     `toml:"log"`
}

// ServerConfig holds relay HTTP server settings.
type ServerConfig struct {
	Addr       string `toml:"addr"`
	CORSOrigin string `toml:"cors_origin"`
}

// SpotifyConfig holds Spotify Web API credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	AccessToken  string `toml:"access_token"`
}

// HasCredentials reports whether client credentials are configured.
func (c SpotifyConfig) HasCredentials() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

// RelayConfig holds settings the player uses to reach the preview relay.
type RelayConfig struct {
	URL            string `toml:"url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
	Limit          int    `toml:"limit"`
}

// CacheConfig selects the preview lookup cache.
type CacheConfig struct {
	Backend      string `toml:"backend"`
	DatabasePath string `toml:"database_path"`
	RedisAddr    string `toml:"redis_addr"`
	TTLMinutes   int    `toml:"ttl_minutes"`
}

// PlayerConfig holds playback controller settings.
type PlayerConfig struct {
	TickMS int `toml:"tick_ms"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}
