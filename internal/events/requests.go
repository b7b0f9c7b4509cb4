package events

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Request is one of the six inbound variants produced by Decode.
type Request interface {
	Event() string
}

type LoginRequest struct {
	User string `json:"user"`
	Pass string `json:"pass"`
}

type RegisterRequest struct {
	User  string `json:"user"`
	Pass  string `json:"pass"`
	Email string `json:"email"`
}

type VerifyRequest struct {
	User string `json:"user"`
	OTP  string `json:"otp"`
}

type ResetRequest struct {
	Email string `json:"email"`
}

type ConfirmResetRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
	Pass  string `json:"pass"`
}

// ChatRequest carries a chat line. Token is the optional session ticket
// issued at login.
type ChatRequest struct {
	User  string `json:"user"`
	Text  string `json:"text"`
	Token string `json:"token,omitempty"`
}

func (LoginRequest) Event() string        { return LoginUser }
func (RegisterRequest) Event() string     { return RegisterStep1 }
func (VerifyRequest) Event() string       { return VerifyOTP }
func (ResetRequest) Event() string        { return RequestReset }
func (ConfirmResetRequest) Event() string { return ConfirmReset }
func (ChatRequest) Event() string         { return ChatMsg }

// NormalizeIdentity trims and lowercases a username.
func NormalizeIdentity(user string) string {
	return strings.ToLower(strings.TrimSpace(user))
}

// Decode turns an envelope into its typed request, normalising fields:
// identities are trimmed and lowercased, emails and codes trimmed, secrets
// passed through untouched. A missing data object decodes as all-empty fields.
func Decode(env Envelope) (Request, error) {
	switch env.Event {
	case LoginUser:
		var r LoginRequest
		if err := unmarshal(env, &r); err != nil {
			return nil, err
		}
		r.User = NormalizeIdentity(r.User)
		return r, nil

	case RegisterStep1:
		var r RegisterRequest
		if err := unmarshal(env, &r); err != nil {
			return nil, err
		}
		r.User = NormalizeIdentity(r.User)
		r.Email = strings.TrimSpace(r.Email)
		return r, nil

	case VerifyOTP:
		var r VerifyRequest
		if err := unmarshal(env, &r); err != nil {
			return nil, err
		}
		r.User = NormalizeIdentity(r.User)
		r.OTP = strings.TrimSpace(r.OTP)
		return r, nil

	case RequestReset:
		var r ResetRequest
		if err := unmarshal(env, &r); err != nil {
			return nil, err
		}
		r.Email = strings.TrimSpace(r.Email)
		return r, nil

	case ConfirmReset:
		var r ConfirmResetRequest
		if err := unmarshal(env, &r); err != nil {
			return nil, err
		}
		r.Email = strings.TrimSpace(r.Email)
		r.OTP = strings.TrimSpace(r.OTP)
		return r, nil

	case ChatMsg:
		var r ChatRequest
		if err := unmarshal(env, &r); err != nil {
			return nil, err
		}
		return r, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, env.Event)
	}
}

func unmarshal(env Envelope, v any) error {
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, env.Event, err)
	}
	return nil
}
