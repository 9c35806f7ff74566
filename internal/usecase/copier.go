package usecase

import (
	"context"
	"strings"

	"blogchat/internal/domain"
	"blogchat/internal/ports"
)

type transcriptCopier struct {
	clipboard ports.Clipboard
	events    ports.EventSink
}

func newTranscriptCopier(clipboard ports.Clipboard, events ports.EventSink) transcriptCopier {
	return transcriptCopier{clipboard: clipboard, events: events}
}

// Copy renders the transcript as plain text and hands it to the clipboard.
func (f transcriptCopier) Copy(ctx context.Context, turns []domain.Turn) error {
	if len(turns) == 0 {
		return ErrEmptyTranscript
	}

	if err := f.clipboard.SetText(ctx, renderTranscript(turns)); err != nil {
		f.events.ChatError(domain.ErrorCodeClipboard, "transcript ready but clipboard write failed")
		return err
	}
	return nil
}

func renderTranscript(turns []domain.Turn) string {
	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		label := "BlogBot"
		if turn.Speaker == domain.SpeakerUser {
			label = "You"
		}
		lines = append(lines, label+": "+turn.Text)
	}
	return strings.Join(lines, "\n")
}
