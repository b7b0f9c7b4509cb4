package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/chatshield/internal/client/client"
	"github.com/dmitrijs2005/chatshield/internal/client/config"
	"github.com/dmitrijs2005/chatshield/internal/events"
	"github.com/dmitrijs2005/chatshield/internal/logging"
)

// Transport is the event channel to the server. *client.Client satisfies it.
type Transport interface {
	Emit(event string, payload any) error
	Events() <-chan events.Envelope
	Close() error
}

type App struct {
	config *config.Config
	conn   Transport
	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex

	mu           sync.Mutex
	userName     string
	token        string
	pendingUser  string
	pendingEmail string
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	dctx, cancel := context.WithTimeout(ctx, c.DialTimeout)
	defer cancel()

	conn, err := client.Dial(dctx, c.ServerURL, logging.New(os.Stderr, "warn"))
	if err != nil {
		return nil, err
	}
	return newApp(c, conn, os.Stdin, os.Stdout), nil
}

func newApp(c *config.Config, conn Transport, in io.Reader, out io.Writer) *App {
	return &App{config: c, conn: conn, reader: bufio.NewReader(in), out: out}
}

// Run prints incoming events in the background and blocks in the REPL.
func (a *App) Run(ctx context.Context) {
	defer a.conn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.watch()
	}()

	a.println("Connected to", a.config.ServerURL, "(type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, a.reader)

	_ = a.conn.Close()
	<-done
}

func (a *App) watch() {
	for env := range a.conn.Events() {
		a.handleEvent(env)
	}
	a.println("Disconnected.")
}

func (a *App) handleEvent(env events.Envelope) {
	switch env.Event {
	case events.AuthStatusEvent:
		var st events.AuthStatus
		if err := json.Unmarshal(env.Data, &st); err != nil {
			return
		}
		if st.Success && st.IsLogin {
			a.mu.Lock()
			a.userName, a.token = st.User, st.Token
			a.mu.Unlock()
		}
		mark := "x"
		if st.Success {
			mark = "ok"
		}
		a.println(fmt.Sprintf("[%s] %s", mark, st.Msg))

	case events.ReceiveMsg:
		var m events.Message
		if err := json.Unmarshal(env.Data, &m); err != nil {
			return
		}
		a.println(fmt.Sprintf("%s %s: %s", m.Time, m.User, m.Text))

	case events.ErrorEvent:
		var e events.ErrorPayload
		_ = json.Unmarshal(env.Data, &e)
		a.println("server error:", e.Msg)
	}
}

func (a *App) isLoggedIn() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.userName != ""
}

func (a *App) getStatus() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.userName == "" {
		return ""
	}
	return "(" + a.userName + ") "
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

func (a *App) emit(event string, payload any) error {
	if err := a.conn.Emit(event, payload); err != nil {
		a.println("send failed:", err)
		return err
	}
	return nil
}
