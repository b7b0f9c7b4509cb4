package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/chatshield/internal/flagx"
	"github.com/dmitrijs2005/chatshield/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Fields left out
// of the file keep their current value.
type JsonConfig struct {
	ServerURL   *string         `json:"server_url"`
	DialTimeout *timex.Duration `json:"dial_timeout"`
}

// parseJson overlays Config with values from the file named by -c/-config.
// It panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.DialTimeout != nil {
		cfg.DialTimeout = time.Duration(jc.DialTimeout.Duration)
	}
}
