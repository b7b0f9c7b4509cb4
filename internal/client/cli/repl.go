package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Verify(ctx context.Context) error
	Login(ctx context.Context) error
	Reset(ctx context.Context) error
	Confirm(ctx context.Context) error
	Logout(ctx context.Context) error
	Say(ctx context.Context, text string) error
}

// runREPL reads commands line by line from reader and dispatches them to a.
// It returns on EOF or when the user types "exit" or "quit".
//
//	help             show available commands
//	register         start an account registration
//	verify           confirm a registration with the mailed code
//	login            authenticate
//	reset            request a password-reset code
//	confirm          set a new password with the mailed code
//	say <text>       post to the room
//	logout           forget the local session
//	exit | quit      leave the program
//
// Once logged in, any line that is not a command is posted as chat. Errors
// from handlers are ignored here; handlers report their own failures.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chat %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		line = strings.TrimRight(line, "\r\n")

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd := parts[0]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: say <text>, logout, help, exit (or just type to chat)")
			} else {
				printlnFn("Available commands: register, verify, login, reset, confirm, help, exit")
			}

		case "register":
			_ = a.Register(ctx)

		case "verify":
			_ = a.Verify(ctx)

		case "login":
			_ = a.Login(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "confirm":
			_ = a.Confirm(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "say":
			_ = a.Say(ctx, strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "say")))

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			if a.isLoggedIn() {
				_ = a.Say(ctx, line)
				continue
			}
			printlnFn("Unknown command:", cmd)
		}
	}
}
