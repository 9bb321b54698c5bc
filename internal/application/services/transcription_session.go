package services

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/rs/zerolog/log"
)

// TranscriptionService opens live transcription sessions over the duplex
// voice provider.
type TranscriptionService struct {
	live providers.LiveSessionProvider
}

// NewTranscriptionService creates a new live transcription service
func NewTranscriptionService(live providers.LiveSessionProvider) *TranscriptionService {
	return &TranscriptionService{live: live}
}

// TranscriptionSession is one running live transcription. Audio goes in via
// SendAudio, events come out of Events. After an error event no further
// events are emitted and the channel closes.
type TranscriptionSession struct {
	audio    chan []byte
	events   chan entities.TranscriptionEvent
	done     <-chan struct{}
	cancel   context.CancelFunc
	stopOnce sync.Once
}

// Open establishes a live session and starts its sender and receiver
// goroutines. A connect failure still returns a session; it emits a single
// terminal error event so the caller has one consumption path.
func (s *TranscriptionService) Open(ctx context.Context) *TranscriptionSession {
	sessionCtx, cancel := context.WithCancel(ctx)
	ts := &TranscriptionSession{
		audio:  make(chan []byte, 16),
		events: make(chan entities.TranscriptionEvent, 32),
		done:   sessionCtx.Done(),
		cancel: cancel,
	}

	upstream, err := s.live.Connect(sessionCtx)
	if err != nil {
		log.Error().Err(err).Msg("Live transcription connect failed")
		ts.events <- entities.ErrorEvent(providers.UserMessage(err))
		close(ts.events)
		cancel()
		return ts
	}

	go ts.sendLoop(sessionCtx, upstream)
	go ts.receiveLoop(sessionCtx, upstream)

	return ts
}

// Events returns the outbound event stream. The channel closes when the
// session ends for any reason.
func (ts *TranscriptionSession) Events() <-chan entities.TranscriptionEvent {
	return ts.events
}

// SendAudio queues one audio chunk for upstream delivery. Chunks sent after
// Stop are dropped.
func (ts *TranscriptionSession) SendAudio(chunk []byte) {
	if len(chunk) == 0 {
		return
	}
	select {
	case ts.audio <- chunk:
	default:
		log.Warn().Msg("Live transcription audio queue full, dropping chunk")
	}
}

// Stop ends the audio stream. Already-received transcripts continue to
// drain until the remote side closes the turn. Stop returns immediately on
// a session that has already ended, even with a full audio queue.
func (ts *TranscriptionSession) Stop() {
	ts.stopOnce.Do(func() {
		select {
		case ts.audio <- nil:
		case <-ts.done:
		}
	})
}

// Cancel tears the session down immediately.
func (ts *TranscriptionSession) Cancel() {
	ts.cancel()
}

// sendLoop forwards queued audio upstream until it sees the nil stop
// sentinel or the session context ends.
func (ts *TranscriptionSession) sendLoop(ctx context.Context, upstream providers.LiveSession) {
	for {
		select {
		case <-ctx.Done():
			return
		case chunk := <-ts.audio:
			if chunk == nil {
				return
			}
			if err := upstream.SendAudio(ctx, chunk); err != nil {
				log.Warn().Err(err).Msg("Live transcription send failed")
				ts.cancel()
				return
			}
		}
	}
}

// receiveLoop pumps upstream messages into the event channel. It owns the
// channel: whatever ends the loop, the channel closes and the session
// context is cancelled so the sender exits too.
func (ts *TranscriptionSession) receiveLoop(ctx context.Context, upstream providers.LiveSession) {
	defer func() {
		ts.cancel()
		_ = upstream.Close()
		close(ts.events)
	}()

	// Unblock the provider read when the context ends.
	go func() {
		<-ctx.Done()
		_ = upstream.Close()
	}()

	for {
		msg, err := upstream.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) {
				return
			}
			ts.emit(entities.ErrorEvent(providers.UserMessage(err)))
			return
		}

		if msg.Transcript != "" {
			ts.emit(entities.TranscriptEvent(msg.Transcript))
		}
		if msg.TurnComplete {
			ts.emit(entities.TurnCompleteEvent())
		}
	}
}

func (ts *TranscriptionSession) emit(event entities.TranscriptionEvent) {
	select {
	case ts.events <- event:
	default:
		log.Warn().Str("type", string(event.Type)).Msg("Live transcription event queue full, dropping event")
	}
}
