package ports

import (
	"context"

	"blogchat/internal/domain"
)

// ChatStream is an active duplex connection to the chat backend.
type ChatStream interface {
	Send(text string) error
	Events() <-chan domain.StreamEvent
	Wait() error
	Close() error
}

// StreamDialer opens chat streams. Each call produces a fresh instance;
// closed streams are never reused.
type StreamDialer interface {
	Dial(ctx context.Context) (ChatStream, error)
}

// AnswerClient is the non-streaming request/response chat variant.
type AnswerClient interface {
	Ask(ctx context.Context, text string) (domain.Answer, error)
	Health(ctx context.Context) (map[string]string, error)
}

// Clipboard writes text into the system clipboard.
type Clipboard interface {
	SetText(ctx context.Context, text string) error
}

// EventSink emits backend state/events to the UI.
type EventSink interface {
	ConnectionStateChanged(state domain.ConnState, reason domain.ConnReason)
	TranscriptChanged(turns []domain.Turn, awaiting bool)
	TypingChanged(active bool)
	ChatError(code domain.ErrorCode, detail string)
}
