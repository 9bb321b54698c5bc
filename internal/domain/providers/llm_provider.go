package providers

import (
	"context"
	"errors"
	"fmt"
)

// LLMProvider defines a generative model provider. Implementations must
// honor ctx cancellation; callers wrap each call with its own timeout.
type LLMProvider interface {
	// Generate produces text for a prompt, bounded by maxTokens
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
}

// ProviderErrorCategory classifies model-call failures into the small set of
// user-facing categories surfaced to clients.
type ProviderErrorCategory string

const (
	ProviderErrorAuth          ProviderErrorCategory = "auth"
	ProviderErrorModelNotFound ProviderErrorCategory = "model_not_found"
	ProviderErrorQuota         ProviderErrorCategory = "quota"
	ProviderErrorNetwork       ProviderErrorCategory = "network"
	ProviderErrorGeneric       ProviderErrorCategory = "generic"
)

// ProviderError is a classified failure from a model-call or streaming
// provider. The serving pipelines treat it as non-fatal per call and
// substitute documented defaults.
type ProviderError struct {
	Category ProviderErrorCategory
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Message)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CategoryOf returns the category of err, or ProviderErrorGeneric when err
// is not a ProviderError.
func CategoryOf(err error) ProviderErrorCategory {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Category
	}
	return ProviderErrorGeneric
}

// UserMessage renders a classified provider error as a message suitable for
// showing to the doctor.
func UserMessage(err error) string {
	switch CategoryOf(err) {
	case ProviderErrorAuth:
		return "Authentication failed. Please check the configured API credentials."
	case ProviderErrorModelNotFound:
		return "The configured AI model is not available."
	case ProviderErrorQuota:
		return "API quota exceeded. Please try again later."
	case ProviderErrorNetwork:
		return "Network error reaching the AI provider."
	default:
		return fmt.Sprintf("AI error: %v", err)
	}
}
