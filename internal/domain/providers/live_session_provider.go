package providers

import "context"

// LiveServerMessage is one inbound message from a duplex streaming session.
// Transcript carries a recognized-speech fragment when non-empty.
type LiveServerMessage struct {
	Transcript   string
	TurnComplete bool
}

// LiveSession is an established bidirectional streaming session. SendAudio
// and Receive may be called concurrently from different goroutines.
type LiveSession interface {
	// SendAudio forwards one binary audio chunk upstream
	SendAudio(ctx context.Context, chunk []byte) error

	// Receive blocks for the next inbound message. It returns an error when
	// the remote side closes the connection or the session fails.
	Receive(ctx context.Context) (*LiveServerMessage, error)

	// Close tears down the connection
	Close() error
}

// LiveSessionProvider opens duplex streaming sessions against the remote
// voice model. Connect failures are returned as classified ProviderErrors.
type LiveSessionProvider interface {
	Connect(ctx context.Context) (LiveSession, error)
}
