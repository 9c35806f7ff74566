package domain

// ConnState models the lifecycle of one streaming connection instance.
type ConnState string

const (
	ConnStateIdle       ConnState = "idle"
	ConnStateConnecting ConnState = "connecting"
	ConnStateOpen       ConnState = "open"
	ConnStateClosed     ConnState = "closed"
	ConnStateErrored    ConnState = "errored"
)

// ConnReason provides a structured reason for connection state transitions.
type ConnReason string

const (
	ConnReasonSessionReady ConnReason = "session_ready"
	ConnReasonDialing      ConnReason = "dialing"
	ConnReasonConnected    ConnReason = "connected"
	ConnReasonDialFailed   ConnReason = "dial_failed"
	ConnReasonClosedByUser ConnReason = "closed_by_user"
	ConnReasonRemoteClosed ConnReason = "remote_closed"
	ConnReasonStreamFailed ConnReason = "stream_failed"
)

// ErrorCode identifies non-fatal and fatal backend errors.
type ErrorCode string

const (
	ErrorCodeStartup   ErrorCode = "startup"
	ErrorCodeDial      ErrorCode = "dial"
	ErrorCodeStream    ErrorCode = "stream"
	ErrorCodeFrame     ErrorCode = "frame"
	ErrorCodeSubmit    ErrorCode = "submit"
	ErrorCodeAsk       ErrorCode = "ask"
	ErrorCodeClipboard ErrorCode = "clipboard"
	ErrorCodeTimeout   ErrorCode = "timeout"
)

// Speaker attributes a transcript turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one message in the transcript. Text is mutable only while the
// turn is the open assistant accumulator; once committed it never changes.
// An assistant turn left with Finalized=false marks a non-authoritative
// answer (backend error, interrupted stream).
type Turn struct {
	ID        int64   `json:"id"`
	Speaker   Speaker `json:"speaker"`
	Text      string  `json:"text"`
	Finalized bool    `json:"finalized"`
}

// EventKind discriminates the stream event union consumed by the reducer.
type EventKind string

const (
	EventKindUserSubmitted EventKind = "user_submitted"
	EventKindToken         EventKind = "token"
	EventKindFinalize      EventKind = "finalize"
	EventKindError         EventKind = "error"
	EventKindTyping        EventKind = "typing"
	EventKindRecovery      EventKind = "recovery"
	EventKindDisconnect    EventKind = "disconnect"
	EventKindUnknown       EventKind = "unknown"
)

// StreamEvent is one decoded protocol event. Text carries the token
// fragment, the submitted query, or the error message depending on Kind.
type StreamEvent struct {
	Kind EventKind `json:"kind"`
	Text string    `json:"text"`
}

// Answer is the response of the non-streaming chat endpoint.
type Answer struct {
	Answer    string `json:"answer"`
	HasAnswer bool   `json:"has_answer"`
}

// Status summarizes the current connection and query state.
type Status struct {
	State         ConnState `json:"state"`
	Awaiting      bool      `json:"awaiting"`
	UnknownFrames int64     `json:"unknownFrames,omitempty"`
	Message       string    `json:"message,omitempty"`
}
