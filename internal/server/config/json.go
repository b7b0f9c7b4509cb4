package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/chatshield/internal/flagx"
	"github.com/dmitrijs2005/chatshield/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Durations accept
// "15s"-style strings or integer nanoseconds. Absent keys keep the value
// already present in Config.
type JsonConfig struct {
	HTTPAddr                     *string         `json:"http_addr"`
	GRPCAddr                     *string         `json:"grpc_addr"`
	DatabaseDSN                  *string         `json:"database_dsn"`
	SecretKey                    *string         `json:"secret_key"`
	SessionTokenValidityDuration *timex.Duration `json:"session_token_validity_duration"`
	SMTPAddr                     *string         `json:"smtp_addr"`
	MailUser                     *string         `json:"mail_user"`
	MailPassword                 *string         `json:"mail_password"`
	MailTimeout                  *timex.Duration `json:"mail_timeout"`
	GeminiKey                    *string         `json:"gemini_key"`
	GeminiModel                  *string         `json:"gemini_model"`
	BotTimeout                   *timex.Duration `json:"bot_timeout"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJson loads the file named by -c/-config into config. Without the flag
// nothing happens; an unreadable file or invalid JSON panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.GRPCAddr, c.GRPCAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.SMTPAddr, c.SMTPAddr)
	setString(&config.MailUser, c.MailUser)
	setString(&config.MailPassword, c.MailPassword)
	setString(&config.GeminiKey, c.GeminiKey)
	setString(&config.GeminiModel, c.GeminiModel)
	setString(&config.LogLevel, c.LogLevel)

	if c.SessionTokenValidityDuration != nil {
		config.SessionTokenValidityDuration = c.SessionTokenValidityDuration.Duration
	}
	if c.MailTimeout != nil {
		config.MailTimeout = c.MailTimeout.Duration
	}
	if c.BotTimeout != nil {
		config.BotTimeout = c.BotTimeout.Duration
	}
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
