package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dmitrijs2005/chatshield/internal/events"
	"github.com/dmitrijs2005/chatshield/internal/logging"
)

const (
	eventBuffer  = 64
	closeTimeout = time.Second
)

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

type Client struct {
	conn   net.Conn
	r      io.Reader
	w      *lockedWriter
	events chan events.Envelope
	done   chan struct{}
	once   sync.Once
	log    logging.Logger

	mu  sync.Mutex
	err error
}

// Dial opens a WebSocket to url, for example ws://127.0.0.1:5001/ws.
func Dial(ctx context.Context, url string, log logging.Logger) (*Client, error) {
	conn, br, _, err := ws.Dial(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return New(conn, br, log), nil
}

// New wraps an established client-side WebSocket connection. br holds bytes
// already buffered during the handshake and may be nil.
func New(conn net.Conn, br *bufio.Reader, log logging.Logger) *Client {
	var r io.Reader = conn
	if br != nil {
		r = io.MultiReader(br, conn)
	}
	c := &Client{
		conn:   conn,
		r:      r,
		w:      &lockedWriter{w: conn},
		events: make(chan events.Envelope, eventBuffer),
		done:   make(chan struct{}),
		log:    log.With("module", "ws_client"),
	}
	go c.readLoop()
	return c
}

// Emit sends one event. Each frame is written with a single Write so it never
// interleaves with control replies from the read loop.
func (c *Client) Emit(event string, payload any) error {
	select {
	case <-c.done:
		return ErrClosed
	default:
	}

	data, err := events.Encode(event, payload)
	if err != nil {
		return err
	}
	frame, err := ws.CompileFrame(ws.MaskFrameInPlace(ws.NewTextFrame(data)))
	if err != nil {
		return err
	}
	if _, err := c.w.Write(frame); err != nil {
		c.fail(err)
		return fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return nil
}

// Events yields incoming envelopes until the connection ends.
func (c *Client) Events() <-chan events.Envelope {
	return c.events
}

// Err returns the error that ended the connection, if any.
func (c *Client) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

func (c *Client) Close() error {
	var err error
	c.once.Do(func() {
		close(c.done)
		// best effort close frame; the server may already be gone
		_ = c.conn.SetWriteDeadline(time.Now().Add(closeTimeout))
		if f, cerr := ws.CompileFrame(ws.MaskFrameInPlace(ws.NewCloseFrame(ws.NewCloseFrameBody(ws.StatusNormalClosure, "")))); cerr == nil {
			_, _ = c.w.Write(f)
		}
		err = c.conn.Close()
	})
	return err
}

func (c *Client) fail(err error) {
	c.mu.Lock()
	if c.err == nil {
		c.err = err
	}
	c.mu.Unlock()
	_ = c.Close()
}

func (c *Client) readLoop() {
	defer close(c.events)

	rw := struct {
		io.Reader
		io.Writer
	}{c.r, c.w}

	for {
		data, err := wsutil.ReadServerText(rw)
		if err != nil {
			select {
			case <-c.done:
			default:
				c.log.Debug(context.Background(), "read error, disconnecting", "error", err)
				c.fail(err)
			}
			return
		}

		env, err := events.Parse(data)
		if err != nil {
			c.log.Debug(context.Background(), "bad frame", "error", err)
			continue
		}

		select {
		case c.events <- env:
		case <-c.done:
			return
		}
	}
}
