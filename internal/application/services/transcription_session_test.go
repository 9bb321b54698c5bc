package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeLiveSession replays a scripted message sequence and records sent audio.
type fakeLiveSession struct {
	mu       sync.Mutex
	messages chan *providers.LiveServerMessage
	finalErr error
	sent     [][]byte
	closed   bool
}

func newFakeLiveSession(finalErr error, messages ...*providers.LiveServerMessage) *fakeLiveSession {
	s := &fakeLiveSession{
		messages: make(chan *providers.LiveServerMessage, len(messages)),
		finalErr: finalErr,
	}
	for _, m := range messages {
		s.messages <- m
	}
	close(s.messages)
	return s
}

func (s *fakeLiveSession) SendAudio(_ context.Context, chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("session closed")
	}
	s.sent = append(s.sent, chunk)
	return nil
}

func (s *fakeLiveSession) Receive(ctx context.Context) (*providers.LiveServerMessage, error) {
	msg, ok := <-s.messages
	if !ok {
		if s.finalErr != nil {
			return nil, s.finalErr
		}
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return msg, nil
}

func (s *fakeLiveSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

type fakeLiveProvider struct {
	session    providers.LiveSession
	connectErr error
}

func (p *fakeLiveProvider) Connect(_ context.Context) (providers.LiveSession, error) {
	if p.connectErr != nil {
		return nil, p.connectErr
	}
	return p.session, nil
}

func collectEvents(t *testing.T, session *TranscriptionSession) []entities.TranscriptionEvent {
	t.Helper()
	var events []entities.TranscriptionEvent
	timeout := time.After(2 * time.Second)
	for {
		select {
		case ev, ok := <-session.Events():
			if !ok {
				return events
			}
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for transcription events")
		}
	}
}

func TestTranscriptionSessionStreamsEvents(t *testing.T) {
	upstream := newFakeLiveSession(nil,
		&providers.LiveServerMessage{Transcript: "the patient reports"},
		&providers.LiveServerMessage{Transcript: " a headache"},
		&providers.LiveServerMessage{TurnComplete: true},
	)
	svc := NewTranscriptionService(&fakeLiveProvider{session: upstream})

	session := svc.Open(context.Background())
	defer session.Cancel()

	events := make([]entities.TranscriptionEvent, 0, 3)
	timeout := time.After(2 * time.Second)
	for len(events) < 3 {
		select {
		case ev := <-session.Events():
			events = append(events, ev)
		case <-timeout:
			t.Fatal("timed out waiting for transcription events")
		}
	}

	assert.Equal(t, entities.TranscriptEvent("the patient reports"), events[0])
	assert.Equal(t, entities.TranscriptEvent(" a headache"), events[1])
	assert.Equal(t, entities.TurnCompleteEvent(), events[2])
}

func TestTranscriptionSessionForwardsAudioUntilStop(t *testing.T) {
	upstream := newFakeLiveSession(nil)
	svc := NewTranscriptionService(&fakeLiveProvider{session: upstream})

	session := svc.Open(context.Background())
	defer session.Cancel()

	session.SendAudio([]byte{1})
	session.SendAudio([]byte{2})
	session.SendAudio(nil) // empty chunks are ignored, not treated as stop

	require.Eventually(t, func() bool {
		upstream.mu.Lock()
		defer upstream.mu.Unlock()
		return len(upstream.sent) == 2
	}, 2*time.Second, 10*time.Millisecond)

	session.Stop()
	session.Cancel()
	collectEvents(t, session)

	upstream.mu.Lock()
	defer upstream.mu.Unlock()
	assert.Equal(t, [][]byte{{1}, {2}}, upstream.sent)
}

func TestTranscriptionSessionConnectFailure(t *testing.T) {
	svc := NewTranscriptionService(&fakeLiveProvider{
		connectErr: &providers.ProviderError{Category: providers.ProviderErrorAuth, Message: "bad key"},
	})

	session := svc.Open(context.Background())
	events := collectEvents(t, session)

	require.Len(t, events, 1)
	assert.Equal(t, entities.TranscriptionEventError, events[0].Type)
	assert.Contains(t, events[0].Err, "Authentication failed")
}

func TestTranscriptionSessionUpstreamErrorIsTerminal(t *testing.T) {
	upstream := newFakeLiveSession(
		&providers.ProviderError{Category: providers.ProviderErrorQuota, Message: "rate limited"},
		&providers.LiveServerMessage{Transcript: "partial"},
	)
	svc := NewTranscriptionService(&fakeLiveProvider{session: upstream})

	session := svc.Open(context.Background())
	events := collectEvents(t, session)

	require.Len(t, events, 2)
	assert.Equal(t, entities.TranscriptEvent("partial"), events[0])
	assert.Equal(t, entities.TranscriptionEventError, events[1].Type)
	assert.Contains(t, events[1].Err, "quota")
}

func TestTranscriptionSessionStopAfterCancelDoesNotBlock(t *testing.T) {
	upstream := newFakeLiveSession(nil)
	svc := NewTranscriptionService(&fakeLiveProvider{session: upstream})

	session := svc.Open(context.Background())
	session.Cancel()
	collectEvents(t, session)

	// With the sender gone, keep queueing until the audio buffer is full.
	for i := 0; i < 32; i++ {
		session.SendAudio([]byte{byte(i)})
	}

	stopped := make(chan struct{})
	go func() {
		session.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(time.Second):
		t.Fatal("Stop blocked on a cancelled session with a full audio buffer")
	}
}

func TestTranscriptionSessionCancelClosesEverything(t *testing.T) {
	upstream := newFakeLiveSession(nil)
	svc := NewTranscriptionService(&fakeLiveProvider{session: upstream})

	session := svc.Open(context.Background())
	session.Cancel()

	events := collectEvents(t, session)
	assert.Empty(t, events)

	require.Eventually(t, func() bool {
		upstream.mu.Lock()
		defer upstream.mu.Unlock()
		return upstream.closed
	}, 2*time.Second, 10*time.Millisecond)
}
