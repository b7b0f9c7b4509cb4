// Package ws serves the chat event channel over WebSocket.
package ws

import (
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"github.com/google/uuid"

	"github.com/dmitrijs2005/chatshield/internal/events"
	"github.com/dmitrijs2005/chatshield/internal/logging"
	"github.com/dmitrijs2005/chatshield/internal/server/hub"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

const (
	DefaultQueueSize      = 64
	DefaultWriteTimeout   = 10 * time.Second
	DefaultPingInterval   = 30 * time.Second
	DefaultMaxMessageSize = 64 << 10
)

// AuthFlows is the set of auth intents a connection can issue.
type AuthFlows interface {
	Login(ctx context.Context, user, pass string) models.AuthStatus
	RegisterStep1(ctx context.Context, user, pass, email string) models.AuthStatus
	VerifyOtp(ctx context.Context, user, otp string) models.AuthStatus
	RequestReset(ctx context.Context, email string) models.AuthStatus
	ConfirmReset(ctx context.Context, email, otp, pass string) models.AuthStatus
}

type ChatPoster interface {
	Post(ctx context.Context, user, text, token string) models.ChatMessage
}

// Roster tracks who receives broadcasts.
type Roster interface {
	Join(p hub.Participant)
	Leave(id string)
}

// Handler runs one session per connection. Frames from a connection are
// handled one at a time, so its replies come back in request order.
type Handler struct {
	auth   AuthFlows
	chat   ChatPoster
	roster Roster
	log    logging.Logger

	QueueSize      int
	WriteTimeout   time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64

	mu       sync.Mutex
	closed   bool
	sessions map[string]*session
	wg       sync.WaitGroup
}

func NewHandler(auth AuthFlows, chat ChatPoster, roster Roster, log logging.Logger) *Handler {
	return &Handler{
		auth:           auth,
		chat:           chat,
		roster:         roster,
		log:            log.With("module", "ws"),
		QueueSize:      DefaultQueueSize,
		WriteTimeout:   DefaultWriteTimeout,
		PingInterval:   DefaultPingInterval,
		MaxMessageSize: DefaultMaxMessageSize,
		sessions:       make(map[string]*session),
	}
}

// Serve takes ownership of an upgraded connection and blocks until it ends,
// ctx is cancelled or the handler is closed.
func (h *Handler) Serve(ctx context.Context, conn net.Conn) {
	s := newSession(uuid.NewString(), conn, h)
	log := h.log.With("session", s.id, "remote", conn.RemoteAddr().String())

	if !h.track(s) {
		log.Debug(ctx, "handler closed, refusing session")
		_ = conn.Close()
		return
	}
	defer h.wg.Done()
	defer h.untrack(s)

	s.onDrop = func(err error) { log.Warn(ctx, "write failed", "error", err) }

	h.roster.Join(s)
	defer func() {
		h.roster.Leave(s.id)
		s.Disconnect()
		log.Info(ctx, "session closed")
	}()
	go s.writeLoop()
	go func() {
		select {
		case <-ctx.Done():
			s.Disconnect()
		case <-s.done:
		}
	}()

	log.Info(ctx, "session opened")
	for {
		data, err := s.read()
		if err != nil {
			switch {
			case errors.Is(err, wsutil.ErrFrameTooLarge):
				log.Warn(ctx, "frame too large", "limit", s.maxMessageSize)
				s.reject(ws.StatusMessageTooBig, events.ErrorPayload{Msg: events.ErrTooLarge.Error()})
			case !isClosed(err):
				log.Debug(ctx, "read failed", "error", err)
			}
			return
		}
		h.handleFrame(ctx, s, data)
	}
}

// Close refuses new sessions and disconnects the open ones. Serve calls
// that are still running return shortly after.
func (h *Handler) Close() {
	h.mu.Lock()
	h.closed = true
	open := make([]*session, 0, len(h.sessions))
	for _, s := range h.sessions {
		open = append(open, s)
	}
	h.mu.Unlock()

	for _, s := range open {
		s.Disconnect()
	}
}

// Wait blocks until every served connection has ended.
func (h *Handler) Wait() {
	h.wg.Wait()
}

func (h *Handler) track(s *session) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.sessions[s.id] = s
	h.wg.Add(1)
	return true
}

func (h *Handler) untrack(s *session) {
	h.mu.Lock()
	delete(h.sessions, s.id)
	h.mu.Unlock()
}

func (h *Handler) handleFrame(ctx context.Context, s *session, data []byte) {
	env, err := events.Parse(data)
	if err != nil {
		h.replyError(ctx, s, err)
		return
	}
	req, err := events.Decode(env)
	if err != nil {
		h.replyError(ctx, s, err)
		return
	}

	var status models.AuthStatus
	switch r := req.(type) {
	case events.LoginRequest:
		status = h.auth.Login(ctx, r.User, r.Pass)
	case events.RegisterRequest:
		status = h.auth.RegisterStep1(ctx, r.User, r.Pass, r.Email)
	case events.VerifyRequest:
		status = h.auth.VerifyOtp(ctx, r.User, r.OTP)
	case events.ResetRequest:
		status = h.auth.RequestReset(ctx, r.Email)
	case events.ConfirmResetRequest:
		status = h.auth.ConfirmReset(ctx, r.Email, r.OTP, r.Pass)
	case events.ChatRequest:
		h.chat.Post(ctx, r.User, r.Text, r.Token)
		return
	default:
		h.replyError(ctx, s, events.ErrUnknownEvent)
		return
	}

	if err := s.reply(events.AuthStatusEvent, toWireStatus(status)); err != nil {
		h.log.Debug(ctx, "reply dropped", "session", s.id, "error", err)
	}
}

func (h *Handler) replyError(ctx context.Context, s *session, cause error) {
	msg := events.ErrMalformed.Error()
	if errors.Is(cause, events.ErrUnknownEvent) {
		msg = events.ErrUnknownEvent.Error()
	}
	h.log.Debug(ctx, "rejected frame", "session", s.id, "error", cause)
	if err := s.reply(events.ErrorEvent, events.ErrorPayload{Msg: msg}); err != nil {
		h.log.Debug(ctx, "reply dropped", "session", s.id, "error", err)
	}
}

func toWireStatus(st models.AuthStatus) events.AuthStatus {
	return events.AuthStatus{
		Success:  st.Success,
		IsLogin:  st.IsLogin,
		NeedsOTP: st.NeedsOTP,
		User:     st.User,
		Msg:      st.Message,
		Token:    st.Token,
	}
}

func isClosed(err error) bool {
	var closed wsutil.ClosedError
	return errors.As(err, &closed) || errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed)
}
