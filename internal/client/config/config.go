package config

import "time"

// Config holds runtime settings for the chat terminal client.
//
// Fields:
//   - ServerURL: WebSocket URL of the chat endpoint.
//   - DialTimeout: bound on the initial connection handshake.
type Config struct {
	ServerURL   string
	DialTimeout time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerURL = "ws://127.0.0.1:5001/ws"
	c.DialTimeout = 5 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
