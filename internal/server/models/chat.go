package models

// ChatMessage is relayed to every participant and never stored. Time is the
// server-assigned label; any client value is discarded.
type ChatMessage struct {
	User string
	Text string
	Time string
}

// Senders used for server-authored messages.
const (
	SenderAssistant = "Assistant"
	SenderSystem    = "System"
)

// System notices.
const (
	NoticeAINotConfigured = "AI not configured."
	NoticeBotOffline      = "Bot offline."
)
