package providers

import (
	"context"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
)

// EventBus defines the interface for publishing and subscribing to
// AI-generation progress events.
type EventBus interface {
	// Publish publishes an event to all subscribers
	Publish(ctx context.Context, channel string, event *entities.ProgressEvent) error

	// Subscribe subscribes to events on a channel
	Subscribe(ctx context.Context, channel string) (<-chan *entities.ProgressEvent, error)

	// Unsubscribe unsubscribes from a channel
	Unsubscribe(ctx context.Context, channel string) error

	// Close closes the event bus and all subscriptions
	Close() error
}

const (
	// EventChannelIntakePrefix is the prefix for per-patient intake
	// generation progress channels
	EventChannelIntakePrefix = "intake:"
)

// GetIntakeChannel returns the progress channel for a patient's intake
// summary generation.
func GetIntakeChannel(patientID string) string {
	return EventChannelIntakePrefix + patientID
}
