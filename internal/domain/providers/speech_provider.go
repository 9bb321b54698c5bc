package providers

import "context"

// SpeechToTextProvider transcribes recorded audio into text.
type SpeechToTextProvider interface {
	// Transcribe converts audio bytes to text. Language is an ISO-639-1 code.
	Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error)
}
