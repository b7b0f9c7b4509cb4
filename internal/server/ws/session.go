package ws

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"

	"github.com/dmitrijs2005/chatshield/internal/events"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

// lockedWriter makes each Write atomic. Every frame leaves the session in a
// single Write, so frames from the writer goroutine and control replies from
// the reader never interleave.
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// session is one WebSocket connection. All outbound frames, direct replies
// and broadcasts alike, go through the out queue and a single writer
// goroutine.
type session struct {
	id     string
	conn   net.Conn
	w      *lockedWriter
	out    chan []byte
	done   chan struct{}
	once   sync.Once
	onDrop func(error)

	writeTimeout   time.Duration
	pingInterval   time.Duration
	maxMessageSize int64
}

func newSession(id string, conn net.Conn, h *Handler) *session {
	return &session{
		id:             id,
		conn:           conn,
		w:              &lockedWriter{w: conn},
		out:            make(chan []byte, h.QueueSize),
		done:           make(chan struct{}),
		writeTimeout:   h.WriteTimeout,
		pingInterval:   h.PingInterval,
		maxMessageSize: h.MaxMessageSize,
	}
}

func (s *session) ID() string { return s.id }

// Closed reports whether Disconnect has run.
func (s *session) Closed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Deliver queues a broadcast without blocking.
func (s *session) Deliver(msg models.ChatMessage) bool {
	frame, err := events.Encode(events.ReceiveMsg, events.Message{User: msg.User, Text: msg.Text, Time: msg.Time})
	if err != nil {
		return false
	}
	select {
	case <-s.done:
		return false
	default:
	}
	select {
	case s.out <- frame:
		return true
	default:
		return false
	}
}

// Disconnect closes the connection, which also ends the read loop. Safe to
// call more than once.
func (s *session) Disconnect() {
	s.once.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

// reply queues a frame for this connection only. It waits for room in the
// queue so replies are never dropped while the session is alive.
func (s *session) reply(event string, payload any) error {
	frame, err := events.Encode(event, payload)
	if err != nil {
		return err
	}
	select {
	case s.out <- frame:
		return nil
	case <-s.done:
		return net.ErrClosed
	}
}

// read returns the next text or binary payload, answering pings and close
// frames on the way. A message longer than maxMessageSize fails with
// wsutil.ErrFrameTooLarge and leaves the stream unusable.
func (s *session) read() ([]byte, error) {
	control := wsutil.ControlFrameHandler(s.w, ws.StateServerSide)
	rd := wsutil.Reader{
		Source:         s.conn,
		State:          ws.StateServerSide,
		CheckUTF8:      true,
		MaxFrameSize:   s.maxMessageSize,
		OnIntermediate: control,
	}

	for {
		hdr, err := rd.NextFrame()
		if err != nil {
			return nil, err
		}
		if hdr.OpCode.IsControl() {
			if err := control(hdr, &rd); err != nil {
				return nil, err
			}
			continue
		}

		var src io.Reader = &rd
		if s.maxMessageSize > 0 {
			src = io.LimitReader(&rd, s.maxMessageSize+1)
		}
		data, err := io.ReadAll(src)
		if err != nil {
			return nil, err
		}
		if s.maxMessageSize > 0 && int64(len(data)) > s.maxMessageSize {
			return nil, wsutil.ErrFrameTooLarge
		}
		return data, nil
	}
}

// reject writes payload as an error event followed by a close frame,
// bypassing the queue. Used right before the session is torn down.
func (s *session) reject(code ws.StatusCode, payload events.ErrorPayload) {
	if frame, err := events.Encode(events.ErrorEvent, payload); err == nil {
		_ = s.writeFrame(ws.NewTextFrame(frame))
	}
	_ = s.writeFrame(ws.NewCloseFrame(ws.NewCloseFrameBody(code, payload.Msg)))
}

func (s *session) writeLoop() {
	var tick <-chan time.Time
	if s.pingInterval > 0 {
		t := time.NewTicker(s.pingInterval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case payload := <-s.out:
			if err := s.writeFrame(ws.NewTextFrame(payload)); err != nil {
				s.drop(err)
				return
			}
		case <-tick:
			if err := s.writeFrame(ws.NewPingFrame(nil)); err != nil {
				s.drop(err)
				return
			}
		case <-s.done:
			return
		}
	}
}

func (s *session) writeFrame(f ws.Frame) error {
	b, err := ws.CompileFrame(f)
	if err != nil {
		return err
	}
	if s.writeTimeout > 0 {
		_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	}
	_, err = s.w.Write(b)
	return err
}

func (s *session) drop(err error) {
	if s.onDrop != nil {
		s.onDrop(err)
	}
	s.Disconnect()
}
