package cli

import (
	"context"

	"github.com/dmitrijs2005/chatshield/internal/events"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login asks for credentials and sends login_user. The session is recorded
// when the server's reply arrives.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	return a.emit(events.LoginUser, events.LoginRequest{User: userName, Pass: password})
}

// Register sends the first registration step and remembers the username for
// a following verify.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.pendingUser = userName
	a.mu.Unlock()

	return a.emit(events.RegisterStep1, events.RegisterRequest{User: userName, Pass: password, Email: email})
}

func (a *App) Verify(ctx context.Context) error {
	a.mu.Lock()
	userName := a.pendingUser
	a.mu.Unlock()

	if userName == "" {
		var err error
		if userName, err = getSimpleText(a.reader, "Enter username", a.out); err != nil {
			return err
		}
	}
	otp, err := getSimpleText(a.reader, "Enter the code from your email", a.out)
	if err != nil {
		return err
	}
	return a.emit(events.VerifyOTP, events.VerifyRequest{User: userName, OTP: otp})
}

func (a *App) Reset(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter account email", a.out)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.pendingEmail = email
	a.mu.Unlock()

	return a.emit(events.RequestReset, events.ResetRequest{Email: email})
}

func (a *App) Confirm(ctx context.Context) error {
	a.mu.Lock()
	email := a.pendingEmail
	a.mu.Unlock()

	if email == "" {
		var err error
		if email, err = getSimpleText(a.reader, "Enter account email", a.out); err != nil {
			return err
		}
	}
	otp, err := getSimpleText(a.reader, "Enter the code from your email", a.out)
	if err != nil {
		return err
	}
	a.println("New password:")
	password, err := getPassword(a.reader, a.out)
	if err != nil {
		return err
	}
	return a.emit(events.ConfirmReset, events.ConfirmResetRequest{Email: email, OTP: otp, Pass: password})
}

// Logout forgets the local session. The server keeps no session to end.
func (a *App) Logout(ctx context.Context) error {
	a.mu.Lock()
	a.userName, a.token = "", ""
	a.mu.Unlock()
	a.println("Logged out.")
	return nil
}

// Say posts text to the room as the logged-in user.
func (a *App) Say(ctx context.Context, text string) error {
	a.mu.Lock()
	user, token := a.userName, a.token
	a.mu.Unlock()

	if user == "" {
		a.println("Log in first.")
		return nil
	}
	if text == "" {
		return nil
	}
	return a.emit(events.ChatMsg, events.ChatRequest{User: user, Text: text, Token: token})
}
