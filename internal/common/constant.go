// Package common contains shared constants and sentinel errors used across
// the chat server and its terminal client.
package common

// MinPasswordLength is the shortest secret accepted at registration and reset.
const MinPasswordLength = 7

// OTP codes are decimal strings in [OTPMin, OTPMax].
const (
	OTPMin = 100000
	OTPMax = 999999
)

// TimeLayout is the human-readable label stamped on every chat message.
const TimeLayout = "15:04"
