// Package client is the terminal client's side of the chat WebSocket.
//
// # Overview
//
// A Client owns one connection. Emit sends an event envelope; a background
// read loop decodes incoming envelopes onto the channel returned by Events,
// which is closed when the connection ends. Err reports why.
//
// # Error Handling
//
// Emit after the connection has ended returns ErrClosed; callers can match it
// with errors.Is. Dial failures are wrapped with ErrUnavailable.
//
// # Concurrency
//
// Emit is safe for concurrent use. Events has a single consumer.
package client
