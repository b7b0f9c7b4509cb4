// Package config loads runtime configuration for the chat terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via -c or -config.
//  3. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-a string   WebSocket URL of the chat endpoint
//	-t int      dial timeout (seconds)
//
// # JSON schema
//
//	{
//	  "server_url": "ws://127.0.0.1:5001/ws",
//	  "dial_timeout": "5s"
//	}
package config
