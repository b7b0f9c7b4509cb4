// Package events defines the JSON wire protocol spoken over the chat
// WebSocket: a named envelope per frame, the inbound request variants and the
// outbound payloads. Both the server and the terminal client use it.
package events

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Inbound event names.
const (
	LoginUser     = "login_user"
	RegisterStep1 = "register_step_1"
	VerifyOTP     = "verify_otp"
	RequestReset  = "request_reset"
	ConfirmReset  = "confirm_reset"
	ChatMsg       = "chat_msg"
)

// Outbound event names.
const (
	AuthStatusEvent = "auth_status"
	ReceiveMsg      = "receive_msg"
	ErrorEvent      = "error"
)

var (
	ErrMalformed    = errors.New("malformed frame")
	ErrUnknownEvent = errors.New("unknown event")
	ErrTooLarge     = errors.New("frame too large")
)

// Envelope is one frame on the wire.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// AuthStatus is the single reply to every auth intent.
type AuthStatus struct {
	Success  bool   `json:"success"`
	IsLogin  bool   `json:"is_login,omitempty"`
	NeedsOTP bool   `json:"needs_otp,omitempty"`
	User     string `json:"user,omitempty"`
	Msg      string `json:"msg"`
	Token    string `json:"token,omitempty"`
}

// Message is a relayed chat line.
type Message struct {
	User string `json:"user"`
	Text string `json:"text"`
	Time string `json:"time"`
}

// ErrorPayload reports a frame the server could not route.
type ErrorPayload struct {
	Msg string `json:"msg"`
}

// Encode builds the wire bytes for an outbound or inbound event.
func Encode(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", event, err)
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

// Parse reads the envelope of a frame without interpreting its data.
func Parse(frame []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		return Envelope{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Event == "" {
		return Envelope{}, fmt.Errorf("%w: missing event name", ErrMalformed)
	}
	return env, nil
}
