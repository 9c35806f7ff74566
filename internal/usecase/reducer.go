package usecase

import (
	"strings"
	"sync"

	"blogchat/internal/domain"
)

// defaultErrorText is the transcript text used when a backend error frame
// carries no message.
const defaultErrorText = "Sorry, something went wrong while answering. Please try again."

// transcriptState is the complete reducer state: the committed turn list
// (append-only, immutable entries), the single open assistant accumulator,
// and the awaiting-response flag. reduce is a pure function of
// (state, event), so any event sequence can be replayed deterministically.
type transcriptState struct {
	turns    []domain.Turn
	open     *domain.Turn
	awaiting bool
	nextID   int64
}

func newTranscriptState() transcriptState {
	return transcriptState{nextID: 1}
}

func reduce(s transcriptState, event domain.StreamEvent) transcriptState {
	switch event.Kind {
	case domain.EventKindUserSubmitted:
		s = commitOpen(s, false)
		s = appendCommitted(s, domain.SpeakerUser, event.Text, true)
		s.awaiting = true
		return s

	case domain.EventKindToken:
		if s.open != nil {
			open := *s.open
			open.Text += event.Text
			s.open = &open
			return s
		}
		return openAssistant(s, event.Text)

	case domain.EventKindFinalize:
		// Unconditional turn-boundary signal: clears the flag even when
		// there is no open turn to finalize.
		s = commitOpen(s, true)
		s.awaiting = false
		return s

	case domain.EventKindError:
		message := strings.TrimSpace(event.Text)
		if message == "" {
			message = defaultErrorText
		}
		s = commitOpen(s, false)
		s = openAssistant(s, message)
		s.awaiting = false
		return s

	case domain.EventKindRecovery, domain.EventKindDisconnect:
		s.awaiting = false
		return s

	default:
		// Typing and unrecognized events never touch durable state.
		return s
	}
}

// commitOpen moves the open assistant turn into the committed list. A turn
// committed with finalized=false stays unfinalized forever, marking a
// non-authoritative answer.
func commitOpen(s transcriptState, finalized bool) transcriptState {
	if s.open == nil {
		return s
	}
	turn := *s.open
	turn.Finalized = turn.Finalized || finalized
	s.turns = appendTurns(s.turns, turn)
	s.open = nil
	return s
}

func openAssistant(s transcriptState, text string) transcriptState {
	s.open = &domain.Turn{
		ID:      s.nextID,
		Speaker: domain.SpeakerAssistant,
		Text:    text,
	}
	s.nextID++
	return s
}

func appendCommitted(s transcriptState, speaker domain.Speaker, text string, finalized bool) transcriptState {
	s.turns = appendTurns(s.turns, domain.Turn{
		ID:        s.nextID,
		Speaker:   speaker,
		Text:      text,
		Finalized: finalized,
	})
	s.nextID++
	return s
}

func appendTurns(turns []domain.Turn, turn domain.Turn) []domain.Turn {
	out := make([]domain.Turn, 0, len(turns)+1)
	out = append(out, turns...)
	return append(out, turn)
}

func snapshot(s transcriptState) []domain.Turn {
	out := make([]domain.Turn, 0, len(s.turns)+1)
	out = append(out, s.turns...)
	if s.open != nil {
		out = append(out, *s.open)
	}
	return out
}

// transcriptLog serializes reducer applications for the controller and
// serves copied snapshots.
type transcriptLog struct {
	mu    sync.Mutex
	state transcriptState
}

func newTranscriptLog() *transcriptLog {
	return &transcriptLog{state: newTranscriptState()}
}

func (l *transcriptLog) apply(event domain.StreamEvent) (turns []domain.Turn, awaiting bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = reduce(l.state, event)
	return snapshot(l.state), l.state.awaiting
}

func (l *transcriptLog) snapshot() []domain.Turn {
	l.mu.Lock()
	defer l.mu.Unlock()
	return snapshot(l.state)
}

func (l *transcriptLog) isAwaiting() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state.awaiting
}
