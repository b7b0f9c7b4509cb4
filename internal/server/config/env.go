package config

import (
	"os"
	"strings"
)

// lookupEnv is a test seam for os.LookupEnv.
var lookupEnv = os.LookupEnv

// parseEnv overlays values from the process environment:
//
//	DATABASE_DSN   database DSN
//	EMAIL_USER     SMTP login and From address
//	EMAIL_PASS     SMTP password; spaces are removed (app passwords are
//	               often pasted in groups of four)
//	GEMINI_KEY     generation API key; surrounding quotes are stripped
//
// Unset variables leave the current value untouched.
func parseEnv(config *Config) {
	if v, ok := lookupEnv("DATABASE_DSN"); ok && strings.TrimSpace(v) != "" {
		config.DatabaseDSN = strings.TrimSpace(v)
	}
	if v, ok := lookupEnv("EMAIL_USER"); ok {
		config.MailUser = strings.TrimSpace(v)
	}
	if v, ok := lookupEnv("EMAIL_PASS"); ok {
		config.MailPassword = strings.TrimSpace(strings.ReplaceAll(v, " ", ""))
	}
	if v, ok := lookupEnv("GEMINI_KEY"); ok {
		v = strings.NewReplacer(`"`, "", "'", "").Replace(v)
		config.GeminiKey = strings.TrimSpace(v)
	}
}
