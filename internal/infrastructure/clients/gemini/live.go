package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/pkg/config"
)

const (
	liveEndpoint       = "wss://generativelanguage.googleapis.com/ws/google.ai.generativelanguage.v1beta.GenerativeService.BidiGenerateContent"
	liveInputMimeType  = "audio/pcm;rate=16000"
	liveDefaultModel   = "gemini-2.0-flash-live-001"
	liveMaxMessageSize = 4 << 20
)

// LiveClient opens duplex streaming sessions against the Gemini Live API
// with input-audio transcription enabled.
type LiveClient struct {
	apiKey string
	model  string
	dialer *websocket.Dialer
}

// NewLiveClient creates a new Gemini Live session provider.
func NewLiveClient(cfg *config.GeminiConfig) (*LiveClient, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	model := cfg.LiveModel
	if model == "" {
		model = liveDefaultModel
	}

	return &LiveClient{
		apiKey: cfg.APIKey,
		model:  model,
		dialer: websocket.DefaultDialer,
	}, nil
}

type liveSetupMessage struct {
	Setup liveSetup `json:"setup"`
}

type liveSetup struct {
	Model                   string             `json:"model"`
	GenerationConfig        liveGenConfig      `json:"generationConfig"`
	InputAudioTranscription map[string]any     `json:"inputAudioTranscription"`
	SystemInstruction       *liveSystemContent `json:"systemInstruction,omitempty"`
}

type liveGenConfig struct {
	ResponseModalities []string `json:"responseModalities"`
}

type liveSystemContent struct {
	Parts []part `json:"parts"`
}

type liveRealtimeInput struct {
	RealtimeInput struct {
		Audio liveAudioBlob `json:"audio"`
	} `json:"realtimeInput"`
}

// Data marshals as standard base64, which is what the wire format expects.
type liveAudioBlob struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
}

type liveServerEnvelope struct {
	SetupComplete *struct{} `json:"setupComplete"`
	ServerContent *struct {
		InputTranscription *struct {
			Text string `json:"text"`
		} `json:"inputTranscription"`
		TurnComplete bool `json:"turnComplete"`
	} `json:"serverContent"`
}

// Connect dials the Live endpoint, performs the setup handshake, and
// returns an established session.
func (c *LiveClient) Connect(ctx context.Context) (providers.LiveSession, error) {
	url := fmt.Sprintf("%s?key=%s", liveEndpoint, c.apiKey)

	conn, resp, err := c.dialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, classifyStatus(resp.StatusCode, "")
		}
		return nil, &providers.ProviderError{
			Category: providers.ProviderErrorNetwork,
			Message:  "failed to dial live endpoint",
			Err:      err,
		}
	}
	conn.SetReadLimit(liveMaxMessageSize)

	setup := liveSetupMessage{
		Setup: liveSetup{
			Model:                   "models/" + c.model,
			GenerationConfig:        liveGenConfig{ResponseModalities: []string{"TEXT"}},
			InputAudioTranscription: map[string]any{},
		},
	}
	if err := conn.WriteJSON(setup); err != nil {
		conn.Close()
		return nil, &providers.ProviderError{
			Category: providers.ProviderErrorNetwork,
			Message:  "failed to send live setup",
			Err:      err,
		}
	}

	// The first server message acknowledges setup.
	var ack liveServerEnvelope
	if err := conn.ReadJSON(&ack); err != nil {
		conn.Close()
		return nil, classifyLiveReadError(err)
	}
	if ack.SetupComplete == nil {
		conn.Close()
		return nil, &providers.ProviderError{
			Category: providers.ProviderErrorGeneric,
			Message:  "live session setup was not acknowledged",
		}
	}

	return &liveSession{conn: conn}, nil
}

type liveSession struct {
	conn *websocket.Conn

	// gorilla/websocket allows at most one concurrent writer.
	writeMu sync.Mutex
}

func (s *liveSession) SendAudio(ctx context.Context, chunk []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg liveRealtimeInput
	msg.RealtimeInput.Audio = liveAudioBlob{Data: chunk, MimeType: liveInputMimeType}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	if err := s.conn.WriteJSON(msg); err != nil {
		return &providers.ProviderError{
			Category: providers.ProviderErrorNetwork,
			Message:  "failed to send audio chunk",
			Err:      err,
		}
	}
	return nil
}

// Receive blocks for the next transcript fragment or turn boundary.
// Cancellation is delivered by closing the session, which unblocks the
// pending read.
func (s *liveSession) Receive(ctx context.Context) (*providers.LiveServerMessage, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		_, data, err := s.conn.ReadMessage()
		if err != nil {
			return nil, classifyLiveReadError(err)
		}

		var envelope liveServerEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, &providers.ProviderError{
				Category: providers.ProviderErrorGeneric,
				Message:  "failed to decode live server message",
				Err:      err,
			}
		}

		sc := envelope.ServerContent
		if sc == nil {
			continue
		}

		msg := &providers.LiveServerMessage{TurnComplete: sc.TurnComplete}
		if sc.InputTranscription != nil {
			msg.Transcript = sc.InputTranscription.Text
		}
		if msg.Transcript == "" && !msg.TurnComplete {
			continue
		}
		return msg, nil
	}
}

func (s *liveSession) Close() error {
	s.writeMu.Lock()
	_ = s.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	s.writeMu.Unlock()
	return s.conn.Close()
}

func classifyLiveReadError(err error) error {
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return &providers.ProviderError{
			Category: providers.ProviderErrorGeneric,
			Message:  "live session closed by server",
			Err:      err,
		}
	}

	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		category := providers.ProviderErrorGeneric
		switch closeErr.Code {
		case websocket.ClosePolicyViolation:
			category = providers.ProviderErrorAuth
		case websocket.CloseTryAgainLater:
			category = providers.ProviderErrorQuota
		}
		return &providers.ProviderError{
			Category: category,
			Message:  fmt.Sprintf("live session closed with code %d", closeErr.Code),
			Err:      err,
		}
	}

	return &providers.ProviderError{
		Category: providers.ProviderErrorNetwork,
		Message:  "live session read failed",
		Err:      err,
	}
}

var _ providers.LiveSessionProvider = (*LiveClient)(nil)
