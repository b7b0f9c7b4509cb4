package services

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/chatshield/internal/common"
	"github.com/dmitrijs2005/chatshield/internal/logging"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

const (
	BotTrigger     = "@bot"
	botQueryOffset = 5
	botPersona     = "You are a grounded, witty, highly capable male lead expert. Respond concisely to: "
)

// Publisher broadcasts one message to all participants.
type Publisher interface {
	Publish(msg models.ChatMessage) int
}

// Generator produces text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Dispatcher answers "@bot" messages. The generator call runs in its own
// goroutine and its outcome is published as a separate message.
type Dispatcher struct {
	base    context.Context
	hub     Publisher
	gen     Generator
	timeout time.Duration
	now     func() time.Time
	log     logging.Logger
	wg      sync.WaitGroup
}

// NewDispatcher returns a Dispatcher whose background calls derive from ctx.
// gen may be nil when no generator is configured.
func NewDispatcher(ctx context.Context, hub Publisher, gen Generator, timeout time.Duration, log logging.Logger) *Dispatcher {
	return &Dispatcher{
		base:    ctx,
		hub:     hub,
		gen:     gen,
		timeout: timeout,
		now:     time.Now,
		log:     log.With("module", "dispatcher"),
	}
}

// Handle inspects a message that has already been published and reports
// whether it triggered the bot.
func (d *Dispatcher) Handle(msg models.ChatMessage) bool {
	if !strings.HasPrefix(msg.Text, BotTrigger) {
		return false
	}

	if d.gen == nil {
		d.hub.Publish(models.ChatMessage{User: models.SenderSystem, Text: models.NoticeAINotConfigured, Time: msg.Time})
		return true
	}

	query := botQuery(msg.Text)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.answer(query)
	}()
	return true
}

// Wait blocks until every in-flight generator call has published its result.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) answer(query string) {
	ctx := d.base
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	reply, err := d.gen.Generate(ctx, botPersona+query)
	ts := d.now().Format(common.TimeLayout)
	if err != nil {
		d.log.Error(ctx, "generator failed", "error", err)
		d.hub.Publish(models.ChatMessage{User: models.SenderSystem, Text: models.NoticeBotOffline, Time: ts})
		return
	}
	d.hub.Publish(models.ChatMessage{User: models.SenderAssistant, Text: reply, Time: ts})
}

// botQuery drops the trigger and the one character following it.
func botQuery(text string) string {
	r := []rune(text)
	if len(r) <= botQueryOffset {
		return ""
	}
	return string(r[botQueryOffset:])
}
