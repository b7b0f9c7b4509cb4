package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/chatshield/internal/flagx"
)

// parseFlags populates Config from command-line flags:
//
//	-a string   HTTP/WebSocket bind address (e.g. ":5001")
//	-g string   gRPC health bind address
//	-d string   database DSN
//	-s string   session ticket secret
//	-t int      session ticket validity, minutes
//	-e string   SMTP server address (host:port, implicit TLS)
//	-u string   SMTP user
//	-p string   SMTP password
//	-k string   Gemini API key
//	-m string   Gemini model
//	-l string   log level
//
// Only these flags are taken from os.Args (see flagx.FilterArgs); a parse
// error panics.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-g", "-d", "-s", "-t", "-e", "-u", "-p", "-k", "-m", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "address and port to serve HTTP/WebSocket")
	fs.StringVar(&config.GRPCAddr, "g", config.GRPCAddr, "address and port to serve gRPC health")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	sessionTokenValidity := fs.Int("t", int(config.SessionTokenValidityDuration.Minutes()), "session_token_validity_duration (in minutes)")

	fs.StringVar(&config.SMTPAddr, "e", config.SMTPAddr, "SMTP server address")
	fs.StringVar(&config.MailUser, "u", config.MailUser, "SMTP user")
	fs.StringVar(&config.MailPassword, "p", config.MailPassword, "SMTP password")
	fs.StringVar(&config.GeminiKey, "k", config.GeminiKey, "Gemini API key")
	fs.StringVar(&config.GeminiModel, "m", config.GeminiModel, "Gemini model")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	config.SessionTokenValidityDuration = time.Duration(*sessionTokenValidity) * time.Minute
}
