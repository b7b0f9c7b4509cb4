package config

import (
	"flag"
	"os"
	"time"

	"github.com/dmitrijs2005/chatshield/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   WebSocket URL of the chat server (default from Config)
//	-t int      dial timeout in seconds (default from Config)
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "chat server URL (ws://host:port/ws)")
	dialTimeout := fs.Int("t", int(cfg.DialTimeout.Seconds()), "dial timeout (in seconds)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.DialTimeout = time.Duration(*dialTimeout) * time.Second
}
