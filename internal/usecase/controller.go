package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"blogchat/internal/domain"
	"blogchat/internal/ports"
)

var (
	// ErrNotReady signals a submit attempted while the connection is not open.
	ErrNotReady = errors.New("chat connection is not ready")
	// ErrEmptyQuery signals a submit with no text after trimming.
	ErrEmptyQuery = errors.New("query text is empty")
	// ErrEmptyTranscript signals a copy attempt on an empty transcript.
	ErrEmptyTranscript = errors.New("no transcript to copy")
)

const notReadyText = "I can't reach the blog assistant right now. Please reconnect and try again."

const timeoutText = "The assistant did not respond in time. Please try again."

// Config controls chat session behavior.
type Config struct {
	// ResponseTimeout bounds how long a query may stay unanswered before
	// the controller synthesizes an error turn. Zero disables the timeout.
	ResponseTimeout time.Duration
	// ErrorFallback replaces empty backend error messages.
	ErrorFallback string
}

// ChatController owns the streaming connection lifecycle and drives the
// transcript reducer. At most one connection instance is live at a time.
type ChatController struct {
	dialer ports.StreamDialer
	events ports.EventSink
	copier transcriptCopier
	cfg    Config

	log     *transcriptLog
	unknown atomic.Int64

	mu        sync.Mutex
	current   *chatSession
	state     domain.ConnState
	typing    bool
	respTimer *time.Timer
}

func NewChatController(
	dialer ports.StreamDialer,
	clipboard ports.Clipboard,
	events ports.EventSink,
	cfg Config,
) *ChatController {
	if cfg.ErrorFallback == "" {
		cfg.ErrorFallback = defaultErrorText
	}
	return &ChatController{
		dialer: dialer,
		events: events,
		copier: newTranscriptCopier(clipboard, events),
		cfg:    cfg,
		log:    newTranscriptLog(),
		state:  domain.ConnStateIdle,
	}
}

// Connect establishes the streaming connection. It is idempotent: a session
// that is already connecting or open is reused. There is no automatic
// reconnection; after a close or error the caller must call Connect again,
// which builds a fresh instance.
func (c *ChatController) Connect(ctx context.Context) error {
	c.mu.Lock()
	if c.state == domain.ConnStateConnecting || c.state == domain.ConnStateOpen {
		c.mu.Unlock()
		return nil
	}
	c.state = domain.ConnStateConnecting
	c.mu.Unlock()
	c.events.ConnectionStateChanged(domain.ConnStateConnecting, domain.ConnReasonDialing)

	sessionCtx, cancel := context.WithCancel(ctx)
	stream, err := c.dialer.Dial(sessionCtx)
	if err != nil {
		cancel()
		c.mu.Lock()
		c.state = domain.ConnStateErrored
		c.mu.Unlock()
		c.events.ChatError(domain.ErrorCodeDial, err.Error())
		c.events.ConnectionStateChanged(domain.ConnStateErrored, domain.ConnReasonDialFailed)
		return err
	}

	session := &chatSession{
		id:       uuid.NewString(),
		cancel:   cancel,
		stream:   stream,
		pumpDone: make(chan struct{}),
	}

	c.mu.Lock()
	c.current = session
	c.state = domain.ConnStateOpen
	c.mu.Unlock()

	go c.pump(session)

	c.events.ConnectionStateChanged(domain.ConnStateOpen, domain.ConnReasonConnected)
	return nil
}

// Submit serializes one user query onto the wire. The answer arrives later
// through the event stream; Submit never blocks on the network.
func (c *ChatController) Submit(text string) error {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return ErrEmptyQuery
	}

	c.mu.Lock()
	state := c.state
	var stream ports.ChatStream
	if c.current != nil {
		stream = c.current.stream
	}
	c.mu.Unlock()

	if state != domain.ConnStateOpen || stream == nil {
		// Surface the rejection as a visible assistant turn so the UI has
		// a deterministic state to render.
		turns, awaiting := c.log.apply(domain.StreamEvent{Kind: domain.EventKindError, Text: notReadyText})
		c.events.TranscriptChanged(turns, awaiting)
		c.events.ChatError(domain.ErrorCodeSubmit, "query submitted while connection is "+string(state))
		return ErrNotReady
	}

	turns, awaiting := c.log.apply(domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: trimmed})
	c.events.TranscriptChanged(turns, awaiting)

	if err := stream.Send(trimmed); err != nil {
		turns, awaiting = c.log.apply(domain.StreamEvent{Kind: domain.EventKindRecovery})
		c.events.TranscriptChanged(turns, awaiting)
		c.events.ChatError(domain.ErrorCodeStream, err.Error())
		return err
	}

	c.armResponseTimer()
	return nil
}

// Disconnect tears the connection down. Safe to call repeatedly and before
// the connection ever opened; the stream resource is released exactly once.
func (c *ChatController) Disconnect() error {
	c.mu.Lock()
	session := c.current
	c.current = nil
	previous := c.state
	c.state = domain.ConnStateClosed
	c.mu.Unlock()

	if session == nil {
		if previous != domain.ConnStateClosed {
			c.events.ConnectionStateChanged(domain.ConnStateClosed, domain.ConnReasonClosedByUser)
		}
		return nil
	}

	c.stopResponseTimer()
	session.cancel()
	_ = session.stream.Close()
	<-session.pumpDone

	c.clearAwaitingAfterDisconnect()
	c.setTyping(false)
	c.events.ConnectionStateChanged(domain.ConnStateClosed, domain.ConnReasonClosedByUser)
	return nil
}

// Status returns the current connection and query state.
func (c *ChatController) Status() domain.Status {
	c.mu.Lock()
	state := c.state
	c.mu.Unlock()
	return domain.Status{
		State:         state,
		Awaiting:      c.log.isAwaiting(),
		UnknownFrames: c.unknown.Load(),
	}
}

// Transcript returns a copy of the current transcript.
func (c *ChatController) Transcript() []domain.Turn {
	return c.log.snapshot()
}

// SessionID identifies the live connection instance, empty when none.
func (c *ChatController) SessionID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.id
}

// CopyTranscript renders the transcript and writes it to the clipboard.
func (c *ChatController) CopyTranscript(ctx context.Context) error {
	return c.copier.Copy(ctx, c.log.snapshot())
}

func (c *ChatController) pump(session *chatSession) {
	defer close(session.pumpDone)

	for event := range session.stream.Events() {
		c.handleEvent(event)
	}
	c.finishSession(session)
}

func (c *ChatController) handleEvent(event domain.StreamEvent) {
	switch event.Kind {
	case domain.EventKindTyping:
		c.setTyping(true)
		return

	case domain.EventKindUnknown:
		c.unknown.Add(1)
		return

	case domain.EventKindRecovery:
		c.setTyping(false)
		turns, awaiting := c.log.apply(event)
		if !awaiting {
			c.stopResponseTimer()
		}
		c.events.ChatError(domain.ErrorCodeFrame, "received a malformed frame; awaiting state cleared")
		c.events.TranscriptChanged(turns, awaiting)
		return

	case domain.EventKindError:
		if strings.TrimSpace(event.Text) == "" {
			event.Text = c.cfg.ErrorFallback
		}
	}

	c.setTyping(false)
	turns, awaiting := c.log.apply(event)
	if !awaiting {
		c.stopResponseTimer()
	}
	c.events.TranscriptChanged(turns, awaiting)
}

// finishSession runs when the event stream drains: the remote side closed
// the socket, or a transport failure ended the read loop.
func (c *ChatController) finishSession(session *chatSession) {
	streamErr := session.stream.Wait()

	c.mu.Lock()
	if c.current != session {
		// Superseded by Disconnect; teardown already reported.
		c.mu.Unlock()
		return
	}
	c.current = nil
	state := domain.ConnStateClosed
	reason := domain.ConnReasonRemoteClosed
	if streamErr != nil {
		state = domain.ConnStateErrored
		reason = domain.ConnReasonStreamFailed
	}
	c.state = state
	c.mu.Unlock()

	c.stopResponseTimer()
	session.cancel()
	c.clearAwaitingAfterDisconnect()
	c.setTyping(false)

	if streamErr != nil {
		c.events.ChatError(domain.ErrorCodeStream, streamErr.Error())
	}
	c.events.ConnectionStateChanged(state, reason)
}

// clearAwaitingAfterDisconnect makes sure the UI is never left in a stuck
// loading state once the connection is gone. No turn is added for the
// disconnection itself.
func (c *ChatController) clearAwaitingAfterDisconnect() {
	if !c.log.isAwaiting() {
		return
	}
	turns, awaiting := c.log.apply(domain.StreamEvent{Kind: domain.EventKindDisconnect})
	c.events.TranscriptChanged(turns, awaiting)
}

func (c *ChatController) setTyping(active bool) {
	c.mu.Lock()
	changed := c.typing != active
	c.typing = active
	c.mu.Unlock()
	if changed {
		c.events.TypingChanged(active)
	}
}

func (c *ChatController) armResponseTimer() {
	if c.cfg.ResponseTimeout <= 0 {
		return
	}
	c.mu.Lock()
	if c.respTimer != nil {
		c.respTimer.Stop()
	}
	c.respTimer = time.AfterFunc(c.cfg.ResponseTimeout, c.onResponseTimeout)
	c.mu.Unlock()
}

func (c *ChatController) stopResponseTimer() {
	c.mu.Lock()
	if c.respTimer != nil {
		c.respTimer.Stop()
		c.respTimer = nil
	}
	c.mu.Unlock()
}

func (c *ChatController) onResponseTimeout() {
	if !c.log.isAwaiting() {
		return
	}
	c.setTyping(false)
	turns, awaiting := c.log.apply(domain.StreamEvent{Kind: domain.EventKindError, Text: timeoutText})
	c.events.ChatError(domain.ErrorCodeTimeout, "no terminating event before the response deadline")
	c.events.TranscriptChanged(turns, awaiting)
}
