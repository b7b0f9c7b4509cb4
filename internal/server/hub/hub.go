// Package hub fans chat messages out to every connected participant.
package hub

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/chatshield/internal/logging"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

// Participant receives published messages. Deliver must not block: it either
// queues the message and returns true, or returns false when the participant
// is closed or cannot keep up. Disconnect is called after a failed delivery
// to a participant that is still open.
type Participant interface {
	ID() string
	Deliver(msg models.ChatMessage) bool
	Closed() bool
	Disconnect()
}

// Hub serialises Publish calls so every participant observes messages in the
// order they were accepted.
type Hub struct {
	mu           sync.Mutex
	participants map[string]Participant
	log          logging.Logger
}

func New(log logging.Logger) *Hub {
	return &Hub{
		participants: make(map[string]Participant),
		log:          log.With("module", "hub"),
	}
}

func (h *Hub) Join(p Participant) {
	h.mu.Lock()
	h.participants[p.ID()] = p
	n := len(h.participants)
	h.mu.Unlock()

	h.log.Debug(context.Background(), "participant joined", "participant", p.ID(), "count", n)
}

// Leave is idempotent.
func (h *Hub) Leave(id string) {
	h.mu.Lock()
	_, ok := h.participants[id]
	delete(h.participants, id)
	n := len(h.participants)
	h.mu.Unlock()

	if ok {
		h.log.Debug(context.Background(), "participant left", "participant", id, "count", n)
	}
}

// Publish delivers msg to every current participant, the sender included.
// Closed participants are removed. Participants whose queue is full are
// removed and disconnected. It returns the number of successful deliveries.
func (h *Hub) Publish(msg models.ChatMessage) int {
	var dropped, gone []Participant

	h.mu.Lock()
	delivered := 0
	for id, p := range h.participants {
		if p.Deliver(msg) {
			delivered++
			continue
		}
		delete(h.participants, id)
		if p.Closed() {
			gone = append(gone, p)
		} else {
			dropped = append(dropped, p)
		}
	}
	n := len(h.participants)
	h.mu.Unlock()

	ctx := context.Background()
	for _, p := range gone {
		h.log.Debug(ctx, "participant left", "participant", p.ID(), "count", n)
	}
	for _, p := range dropped {
		h.log.Warn(ctx, "dropping slow participant", "participant", p.ID())
		p.Disconnect()
	}
	return delivered
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.participants)
}
