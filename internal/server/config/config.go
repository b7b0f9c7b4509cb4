// Package config handles configuration for the chat server: defaults, a JSON
// overlay, environment variables and command-line flags, applied in that order.
package config

import "time"

// Config holds runtime settings for the chat server.
//
// Fields:
//   - HTTPAddr: bind address for the HTTP/WebSocket endpoint.
//   - GRPCAddr: bind address for the gRPC health endpoint.
//   - DatabaseDSN: postgres:// URL (pgx) or a SQLite file path.
//   - SecretKey: HMAC secret for session tickets (HS256).
//   - SessionTokenValidityDuration: session ticket lifetime.
//   - SMTPAddr / MailUser / MailPassword: outbound mail over implicit TLS.
//   - MailTimeout: bound on a single mail delivery.
//   - GeminiKey / GeminiModel: text-generation collaborator; an empty key
//     leaves the bot unconfigured.
//   - BotTimeout: bound on a single generation request.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	HTTPAddr                     string
	GRPCAddr                     string
	DatabaseDSN                  string
	SecretKey                    string
	SessionTokenValidityDuration time.Duration
	SMTPAddr                     string
	MailUser                     string
	MailPassword                 string
	MailTimeout                  time.Duration
	GeminiKey                    string
	GeminiModel                  string
	BotTimeout                   time.Duration
	LogLevel                     string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey must be overridden outside of local runs.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":5001"
	c.GRPCAddr = ":50051"
	c.DatabaseDSN = "users.db"
	c.SecretKey = "secretKey"
	c.SessionTokenValidityDuration = 60 * time.Minute
	c.SMTPAddr = "smtp.gmail.com:465"
	c.MailTimeout = 15 * time.Second
	c.GeminiModel = "gemini-2.0-flash"
	c.BotTimeout = 30 * time.Second
	c.LogLevel = "info"
}

// LoadConfig applies defaults, then the optional JSON file, then the
// environment and finally command-line flags.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
