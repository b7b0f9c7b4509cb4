package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/chatshield/internal/common"
	"github.com/dmitrijs2005/chatshield/internal/logging"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

// TokenVerifier resolves a session ticket to its username.
type TokenVerifier interface {
	Verify(token string) (string, error)
}

// ChatService stamps and relays chat messages, then hands them to the
// dispatcher.
type ChatService struct {
	hub        Publisher
	dispatcher *Dispatcher
	tokens     TokenVerifier
	now        func() time.Time
	log        logging.Logger
}

// NewChatService builds a ChatService. dispatcher and tokens may be nil.
func NewChatService(hub Publisher, dispatcher *Dispatcher, tokens TokenVerifier, log logging.Logger) *ChatService {
	return &ChatService{
		hub:        hub,
		dispatcher: dispatcher,
		tokens:     tokens,
		now:        time.Now,
		log:        log.With("module", "chat"),
	}
}

// Post publishes the message under the sender's name and the server's clock.
// A valid ticket overrides the claimed user.
func (s *ChatService) Post(ctx context.Context, user, text, token string) models.ChatMessage {
	msg := models.ChatMessage{
		User: s.sender(ctx, user, token),
		Text: text,
		Time: s.now().Format(common.TimeLayout),
	}

	s.hub.Publish(msg)
	if s.dispatcher != nil {
		s.dispatcher.Handle(msg)
	}
	return msg
}

func (s *ChatService) sender(ctx context.Context, user, token string) string {
	if token == "" || s.tokens == nil {
		return user
	}
	name, err := s.tokens.Verify(token)
	if err != nil {
		s.log.Debug(ctx, "ignoring invalid session ticket", "error", err)
		return user
	}
	return name
}
