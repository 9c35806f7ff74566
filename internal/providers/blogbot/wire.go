package blogbot

import (
	"encoding/json"
	"fmt"

	"blogchat/internal/domain"
)

// finalizeSentinel is the exact delimiter text that terminates an answer.
// A delimiter frame with any other text is not a recognized terminator.
const finalizeSentinel = "###"

type serverFrame struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

type clientFrame struct {
	Message string `json:"message"`
}

// decodeFrame parses one incoming websocket payload into a stream event.
// A payload that does not parse as the frame schema returns an error;
// frames with an unrecognized type decode cleanly to EventKindUnknown.
func decodeFrame(payload []byte) (domain.StreamEvent, error) {
	var frame serverFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return domain.StreamEvent{}, fmt.Errorf("undecodable chat frame: %w", err)
	}

	switch frame.Type {
	case "token":
		return domain.StreamEvent{Kind: domain.EventKindToken, Text: frame.Content}, nil
	case "delimiter":
		if frame.Text == finalizeSentinel {
			return domain.StreamEvent{Kind: domain.EventKindFinalize}, nil
		}
		return domain.StreamEvent{Kind: domain.EventKindUnknown}, nil
	case "error":
		return domain.StreamEvent{Kind: domain.EventKindError, Text: frame.Content}, nil
	case "typing":
		return domain.StreamEvent{Kind: domain.EventKindTyping}, nil
	default:
		return domain.StreamEvent{Kind: domain.EventKindUnknown}, nil
	}
}

// encodeQuery serializes a user query into the outgoing wire format.
func encodeQuery(text string) ([]byte, error) {
	payload, err := json.Marshal(clientFrame{Message: text})
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	return payload, nil
}
