package config

// Default returns a Config populated with sensible defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:       ":5000",
			CORSOrigin: "*",
		},
		Relay: RelayConfig{
			URL:            "http://localhost:5000/api/get-preview",
			TimeoutSeconds: 5,
			Limit:          3,
		},
		Cache: CacheConfig{
			Backend:      "sqlite",
			DatabasePath: "previews.db",
			TTLMinutes:   60,
		},
		Player: PlayerConfig{
			TickMS: 1000,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ApplyDefaults fills in zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	d := Default()

	// Server
	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.CORSOrigin == "" {
		c.Server.CORSOrigin = d.Server.CORSOrigin
	}

	// Relay
	if c.Relay.URL == "" {
		c.Relay.URL = d.Relay.URL
	}
	if c.Relay.TimeoutSeconds == 0 {
		c.Relay.TimeoutSeconds = d.Relay.TimeoutSeconds
	}
	if c.Relay.Limit == 0 {
		c.Relay.Limit = d.Relay.Limit
	}

	// Cache
	if c.Cache.Backend == "" {
		c.Cache.Backend = d.Cache.Backend
	}
	if c.Cache.DatabasePath == "" {
		c.Cache.DatabasePath = d.Cache.DatabasePath
	}
	if c.Cache.TTLMinutes == 0 {
		c.Cache.TTLMinutes = d.Cache.TTLMinutes
	}

	// Player
	if c.Player.TickMS == 0 {
		c.Player.TickMS = d.Player.TickMS
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}
}
