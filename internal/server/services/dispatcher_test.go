package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/chatshield/internal/logging"
	"github.com/dmitrijs2005/chatshield/internal/server/models"
)

type recordingHub struct {
	mu   sync.Mutex
	msgs []models.ChatMessage
}

func (h *recordingHub) Publish(m models.ChatMessage) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, m)
	return 1
}

func (h *recordingHub) all() []models.ChatMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]models.ChatMessage(nil), h.msgs...)
}

type fakeGenerator struct {
	mu      sync.Mutex
	prompts []string
	reply   string
	err     error
	block   bool
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	g.prompts = append(g.prompts, prompt)
	g.mu.Unlock()
	if g.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return g.reply, g.err
}

func (g *fakeGenerator) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.prompts...)
}

func fixedClock(s string) func() time.Time {
	ts, _ := time.Parse("15:04", s)
	return func() time.Time { return ts }
}

func TestDispatcher_IgnoresOrdinaryText(t *testing.T) {
	hub := &recordingHub{}
	gen := &fakeGenerator{reply: "x"}
	d := NewDispatcher(context.Background(), hub, gen, time.Second, logging.NewNop())

	for _, text := range []string{"hello", " @bot hi", "@Bot hi", "bot", ""} {
		assert.False(t, d.Handle(models.ChatMessage{Text: text}), text)
	}
	d.Wait()
	assert.Empty(t, gen.calls())
	assert.Empty(t, hub.all())
}

func TestDispatcher_NotConfigured(t *testing.T) {
	hub := &recordingHub{}
	d := NewDispatcher(context.Background(), hub, nil, time.Second, logging.NewNop())

	assert.True(t, d.Handle(models.ChatMessage{User: "alice", Text: "@bot hi", Time: "09:30"}))
	assert.Equal(t, []models.ChatMessage{
		{User: models.SenderSystem, Text: models.NoticeAINotConfigured, Time: "09:30"},
	}, hub.all())
}

func TestDispatcher_PublishesAssistantReply(t *testing.T) {
	hub := &recordingHub{}
	gen := &fakeGenerator{reply: "Four."}
	d := NewDispatcher(context.Background(), hub, gen, time.Second, logging.NewNop())
	d.now = fixedClock("12:01")

	require.True(t, d.Handle(models.ChatMessage{Text: "@bot what is 2+2", Time: "12:00"}))
	d.Wait()

	assert.Equal(t, []string{botPersona + "what is 2+2"}, gen.calls())
	assert.Equal(t, []models.ChatMessage{
		{User: models.SenderAssistant, Text: "Four.", Time: "12:01"},
	}, hub.all())
}

func TestDispatcher_FailureBecomesNotice(t *testing.T) {
	hub := &recordingHub{}
	gen := &fakeGenerator{err: errors.New("503")}
	d := NewDispatcher(context.Background(), hub, gen, time.Second, logging.NewNop())
	d.now = fixedClock("08:15")

	require.True(t, d.Handle(models.ChatMessage{Text: "@botwhat is 2+2"}))
	d.Wait()

	// fixed offset: the character after the trigger is dropped even when it
	// is not a separator
	assert.Equal(t, []string{botPersona + "hat is 2+2"}, gen.calls())
	assert.Equal(t, []models.ChatMessage{
		{User: models.SenderSystem, Text: models.NoticeBotOffline, Time: "08:15"},
	}, hub.all())
}

func TestDispatcher_TimeoutBecomesNotice(t *testing.T) {
	hub := &recordingHub{}
	gen := &fakeGenerator{block: true}
	d := NewDispatcher(context.Background(), hub, gen, 20*time.Millisecond, logging.NewNop())

	require.True(t, d.Handle(models.ChatMessage{Text: "@bot slow"}))
	d.Wait()

	msgs := hub.all()
	require.Len(t, msgs, 1)
	assert.Equal(t, models.NoticeBotOffline, msgs[0].Text)
}

func TestDispatcher_HandleDoesNotWaitForGenerator(t *testing.T) {
	hub := &recordingHub{}
	gen := &fakeGenerator{block: true}
	ctx, cancel := context.WithCancel(context.Background())
	d := NewDispatcher(ctx, hub, gen, time.Minute, logging.NewNop())

	done := make(chan struct{})
	go func() {
		d.Handle(models.ChatMessage{Text: "@bot hang"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Handle blocked on the generator")
	}
	assert.Empty(t, hub.all())

	cancel()
	d.Wait()
	assert.Len(t, hub.all(), 1)
}

func TestBotQuery(t *testing.T) {
	cases := map[string]string{
		"@bot":          "",
		"@bot ":         "",
		"@bot hi":       "hi",
		"@bot  spaced":  " spaced",
		"@bot привет":   "привет",
		"@bot\tanswer?": "answer?",
	}
	for in, want := range cases {
		assert.Equal(t, want, botQuery(in), in)
	}
}
