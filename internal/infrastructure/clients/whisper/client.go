// Package whisper implements speech-to-text over the OpenAI audio
// transcription API.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/pkg/config"
)

const defaultBaseURL = "https://api.openai.com/v1"

// Client implements providers.SpeechToTextProvider.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new Whisper transcription client.
func NewClient(cfg *config.WhisperConfig) (*Client, error) {
	if cfg == nil || cfg.APIKey == "" {
		return nil, errors.New("whisper api key is required")
	}

	model := cfg.Model
	if model == "" {
		model = "whisper-1"
	}

	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

type transcriptionResponse struct {
	Text string `json:"text"`
}

// Transcribe uploads an audio blob and returns the recognized text.
// Language is an optional ISO 639-1 hint.
func (c *Client) Transcribe(ctx context.Context, audio []byte, filename, language string) (string, error) {
	if len(audio) == 0 {
		return "", errors.New("audio payload is empty")
	}
	if filename == "" {
		filename = "audio.webm"
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filePart, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return "", err
	}
	if _, err := filePart.Write(audio); err != nil {
		return "", err
	}
	if err := writer.WriteField("model", c.model); err != nil {
		return "", err
	}
	if language != "" {
		if err := writer.WriteField("language", language); err != nil {
			return "", err
		}
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/audio/transcriptions", &body)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		return "", &providers.ProviderError{
			Category: providers.ProviderErrorNetwork,
			Message:  "whisper request failed",
			Err:      err,
		}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		category := providers.ProviderErrorGeneric
		switch {
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			category = providers.ProviderErrorAuth
		case resp.StatusCode == http.StatusTooManyRequests:
			category = providers.ProviderErrorQuota
		case resp.StatusCode >= 500:
			category = providers.ProviderErrorNetwork
		}
		return "", &providers.ProviderError{
			Category: category,
			Message:  fmt.Sprintf("whisper request failed with status %d: %s", resp.StatusCode, respBody),
		}
	}

	var payload transcriptionResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &providers.ProviderError{
			Category: providers.ProviderErrorGeneric,
			Message:  "failed to decode whisper response",
			Err:      err,
		}
	}
	return strings.TrimSpace(payload.Text), nil
}

var _ providers.SpeechToTextProvider = (*Client)(nil)
