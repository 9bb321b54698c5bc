package entities

import "time"

// ProgressEvent is one progress update emitted while a long-running AI
// generation executes, streamed to clients over SSE.
type ProgressEvent struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}
