package providers

import "context"

// MessageSender sends outbound messages to patients (intake links, OTPs).
type MessageSender interface {
	// SendText sends a plain text message and returns the provider message ID
	SendText(ctx context.Context, to, body string) (string, error)

	// SendTemplate sends a pre-approved template message
	SendTemplate(ctx context.Context, to, templateName, languageCode string, parameters []string) (string, error)
}
