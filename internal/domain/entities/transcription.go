package entities

// TranscriptionEventType discriminates TranscriptionEvent variants.
type TranscriptionEventType string

const (
	TranscriptionEventTranscript   TranscriptionEventType = "transcript"
	TranscriptionEventTurnComplete TranscriptionEventType = "turn_complete"
	TranscriptionEventError        TranscriptionEventType = "error"
)

// TranscriptionEvent is one event emitted by a live transcription session.
// Text is set for transcript events, Err for error events.
type TranscriptionEvent struct {
	Type TranscriptionEventType `json:"type"`
	Text string                 `json:"text,omitempty"`
	Err  string                 `json:"error,omitempty"`
}

// TranscriptEvent builds a transcript fragment event.
func TranscriptEvent(text string) TranscriptionEvent {
	return TranscriptionEvent{Type: TranscriptionEventTranscript, Text: text}
}

// TurnCompleteEvent builds an end-of-turn event.
func TurnCompleteEvent() TranscriptionEvent {
	return TranscriptionEvent{Type: TranscriptionEventTurnComplete}
}

// ErrorEvent builds a terminal error event.
func ErrorEvent(msg string) TranscriptionEvent {
	return TranscriptionEvent{Type: TranscriptionEventError, Err: msg}
}
