package usecase

import (
	"reflect"
	"testing"

	"blogchat/internal/domain"
)

func applyAll(s transcriptState, events ...domain.StreamEvent) transcriptState {
	for _, event := range events {
		s = reduce(s, event)
	}
	return s
}

func TestReduceUserTokensFinalize(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "hi"},
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "Hel"},
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "lo!"},
		domain.StreamEvent{Kind: domain.EventKindFinalize},
	)

	turns := snapshot(s)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Speaker != domain.SpeakerUser || turns[0].Text != "hi" || !turns[0].Finalized {
		t.Fatalf("unexpected user turn: %+v", turns[0])
	}
	if turns[1].Speaker != domain.SpeakerAssistant || turns[1].Text != "Hello!" || !turns[1].Finalized {
		t.Fatalf("unexpected assistant turn: %+v", turns[1])
	}
	if s.awaiting {
		t.Fatalf("expected awaiting cleared after finalize")
	}
}

func TestReduceTokenConcatenationHasNoSeparator(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "a"},
		domain.StreamEvent{Kind: domain.EventKindToken, Text: " b"},
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "c"},
	)

	turns := snapshot(s)
	if len(turns) != 1 || turns[0].Text != "a bc" {
		t.Fatalf("unexpected concatenation: %+v", turns)
	}
}

func TestReduceTokenWithoutOpenTurnStartsAssistantTurn(t *testing.T) {
	t.Parallel()

	s := reduce(newTranscriptState(), domain.StreamEvent{Kind: domain.EventKindToken, Text: "a"})

	turns := snapshot(s)
	if len(turns) != 1 {
		t.Fatalf("expected 1 turn, got %d", len(turns))
	}
	if turns[0].Speaker != domain.SpeakerAssistant || turns[0].Text != "a" || turns[0].Finalized {
		t.Fatalf("unexpected turn: %+v", turns[0])
	}
}

func TestReduceErrorAppendsUnfinalizedTurn(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "x"},
		domain.StreamEvent{Kind: domain.EventKindError, Text: "oops"},
	)

	turns := snapshot(s)
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[1].Speaker != domain.SpeakerAssistant || turns[1].Text != "oops" || turns[1].Finalized {
		t.Fatalf("unexpected error turn: %+v", turns[1])
	}
	if s.awaiting {
		t.Fatalf("expected awaiting cleared after error")
	}
}

func TestReduceErrorFallbackText(t *testing.T) {
	t.Parallel()

	s := reduce(newTranscriptState(), domain.StreamEvent{Kind: domain.EventKindError, Text: "  "})

	turns := snapshot(s)
	if len(turns) != 1 || turns[0].Text != defaultErrorText {
		t.Fatalf("expected fallback error text, got %+v", turns)
	}
}

func TestReduceFinalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "done"},
		domain.StreamEvent{Kind: domain.EventKindFinalize},
	)
	first := snapshot(s)

	s = reduce(s, domain.StreamEvent{Kind: domain.EventKindFinalize})
	second := snapshot(s)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("second finalize changed the transcript: %+v vs %+v", first, second)
	}
	if s.awaiting {
		t.Fatalf("expected awaiting to stay cleared")
	}
}

func TestReduceFinalizeWithoutOpenTurnClearsAwaiting(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "hi"},
		domain.StreamEvent{Kind: domain.EventKindFinalize},
	)

	if s.awaiting {
		t.Fatalf("expected awaiting cleared")
	}
	turns := snapshot(s)
	if len(turns) != 1 || turns[0].Speaker != domain.SpeakerUser {
		t.Fatalf("expected transcript unchanged, got %+v", turns)
	}
}

func TestReduceUserSubmitCommitsOpenTurn(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "partial"},
		domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "next"},
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "fresh"},
	)

	turns := snapshot(s)
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	if turns[0].Text != "partial" || turns[0].Finalized {
		t.Fatalf("expected committed unfinalized turn, got %+v", turns[0])
	}
	if turns[1].Speaker != domain.SpeakerUser || turns[1].Text != "next" {
		t.Fatalf("unexpected user turn: %+v", turns[1])
	}
	if turns[2].Text != "fresh" {
		t.Fatalf("expected token to start a fresh turn, got %+v", turns[2])
	}
}

func TestReduceTypingAndUnknownAreNoOps(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "hi"},
	)
	before := snapshot(s)

	s = applyAll(s,
		domain.StreamEvent{Kind: domain.EventKindTyping},
		domain.StreamEvent{Kind: domain.EventKindUnknown},
	)

	if !reflect.DeepEqual(before, snapshot(s)) {
		t.Fatalf("typing/unknown events mutated the transcript")
	}
	if !s.awaiting {
		t.Fatalf("typing/unknown events must not clear awaiting")
	}
}

func TestReduceRecoveryAndDisconnectClearFlagOnly(t *testing.T) {
	t.Parallel()

	for _, kind := range []domain.EventKind{domain.EventKindRecovery, domain.EventKindDisconnect} {
		s := applyAll(newTranscriptState(),
			domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "hi"},
		)
		before := snapshot(s)

		s = reduce(s, domain.StreamEvent{Kind: kind})
		if s.awaiting {
			t.Fatalf("%s should clear awaiting", kind)
		}
		if !reflect.DeepEqual(before, snapshot(s)) {
			t.Fatalf("%s mutated the transcript", kind)
		}
	}
}

func TestReduceTurnIDsAreMonotonic(t *testing.T) {
	t.Parallel()

	s := applyAll(newTranscriptState(),
		domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "one"},
		domain.StreamEvent{Kind: domain.EventKindToken, Text: "a"},
		domain.StreamEvent{Kind: domain.EventKindFinalize},
		domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "two"},
		domain.StreamEvent{Kind: domain.EventKindError, Text: "oops"},
	)

	turns := snapshot(s)
	for i := 1; i < len(turns); i++ {
		if turns[i].ID <= turns[i-1].ID {
			t.Fatalf("turn IDs not monotonic: %+v", turns)
		}
	}
}

func TestReduceIsReplayable(t *testing.T) {
	t.Parallel()

	events := []domain.StreamEvent{
		{Kind: domain.EventKindUserSubmitted, Text: "hi"},
		{Kind: domain.EventKindTyping},
		{Kind: domain.EventKindToken, Text: "Hel"},
		{Kind: domain.EventKindToken, Text: "lo"},
		{Kind: domain.EventKindUnknown},
		{Kind: domain.EventKindFinalize},
		{Kind: domain.EventKindUserSubmitted, Text: "again"},
		{Kind: domain.EventKindError, Text: ""},
	}

	first := applyAll(newTranscriptState(), events...)
	second := applyAll(newTranscriptState(), events...)

	if !reflect.DeepEqual(snapshot(first), snapshot(second)) {
		t.Fatalf("replay produced a different transcript")
	}
	if first.awaiting != second.awaiting {
		t.Fatalf("replay produced a different awaiting flag")
	}
}

func TestTranscriptLogSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	log := newTranscriptLog()
	log.apply(domain.StreamEvent{Kind: domain.EventKindUserSubmitted, Text: "hi"})

	turns := log.snapshot()
	turns[0].Text = "mutated"

	if got := log.snapshot()[0].Text; got != "hi" {
		t.Fatalf("snapshot exposed internal state: %q", got)
	}
}
