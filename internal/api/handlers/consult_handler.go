package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/parchi-ai/clinic-backend/internal/application/services"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/observability"
)

const maxAudioUploadBytes = 25 << 20

// ConsultHandler handles consult session requests, audio transcription
// uploads, and the live transcription websocket.
type ConsultHandler struct {
	consultService       *services.ConsultService
	transcriptionService *services.TranscriptionService
	upgrader             websocket.Upgrader
}

// NewConsultHandler creates a new consult handler
func NewConsultHandler(consultService *services.ConsultService, transcriptionService *services.TranscriptionService) *ConsultHandler {
	return &ConsultHandler{
		consultService:       consultService,
		transcriptionService: transcriptionService,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  32 * 1024,
			WriteBufferSize: 4 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

// StartConsult handles POST /api/patients/{id}/consults
func (h *ConsultHandler) StartConsult(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	session, err := h.consultService.Start(r.Context(), patientID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, session)
}

// StopConsult handles POST /api/consults/{id}/stop
func (h *ConsultHandler) StopConsult(w http.ResponseWriter, r *http.Request) {
	sessionID := r.PathValue("id")
	if sessionID == "" {
		respondWithError(w, http.StatusBadRequest, "consult session ID is required")
		return
	}

	var body struct {
		Transcript string `json:"transcript"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}

	session, err := h.consultService.Stop(r.Context(), sessionID, body.Transcript)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, session)
}

// TranscribeAudio handles POST /api/transcribe (multipart file upload)
func (h *ConsultHandler) TranscribeAudio(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxAudioUploadBytes); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid multipart payload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "audio file is required")
		return
	}
	defer file.Close()

	audio, err := io.ReadAll(io.LimitReader(file, maxAudioUploadBytes))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "could not read audio file")
		return
	}

	language := r.FormValue("language")
	if language == "" {
		language = "en"
	}

	text, err := h.consultService.TranscribeFile(r.Context(), audio, header.Filename, language)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"text": text,
	})
}

// SaveDump handles POST /api/patients/{id}/clinical-dump
func (h *ConsultHandler) SaveDump(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	var body struct {
		ConsultSessionID string `json:"consult_session_id"`
		Text             string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(body.Text) == "" {
		respondWithError(w, http.StatusBadRequest, "text is required")
		return
	}

	dump, err := h.consultService.SaveDump(r.Context(), patientID, body.ConsultSessionID, body.Text)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, dump)
}

// liveControlMessage is a JSON control frame from the live transcription
// client.
type liveControlMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// LiveTranscribe handles GET /ws/consult-transcribe/{id}.
// The client streams binary PCM audio frames; the server streams JSON
// transcription events back. Text frames are JSON controls: "stop" ends the
// audio stream, "manual_note" appends a doctor note to the transcript. The
// accumulated transcript is persisted to the clinical dump and the consult
// session when the stream ends.
func (h *ConsultHandler) LiveTranscribe(w http.ResponseWriter, r *http.Request) {
	logger := observability.LoggerFromContext(r.Context())
	sessionID := r.PathValue("id")

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	defer conn.Close()

	// Writes come from both the event downlink and control acks.
	var writeMu sync.Mutex
	writeJSON := func(v interface{}) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(v)
	}

	consult, err := h.consultService.Get(r.Context(), sessionID)
	if err != nil {
		_ = writeJSON(map[string]string{"type": "error", "error": "Consult session not found"})
		return
	}

	dump, err := h.consultService.OpenDump(r.Context(), consult.PatientID, sessionID)
	if err != nil {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to create clinical dump")
		_ = writeJSON(map[string]string{"type": "error", "error": "Could not start the transcription session"})
		return
	}
	_ = writeJSON(map[string]string{"type": "session_info", "dump_id": dump.ID})

	session := h.transcriptionService.Open(r.Context())
	defer session.Cancel()

	var transcriptMu sync.Mutex
	var transcript []string
	appendLine := func(line string) {
		transcriptMu.Lock()
		transcript = append(transcript, line)
		transcriptMu.Unlock()
	}

	// Downlink: transcription events to the client, transcripts accumulated
	// server-side as they arrive.
	downDone := make(chan struct{})
	go func() {
		defer close(downDone)
		for event := range session.Events() {
			if event.Type == entities.TranscriptionEventTranscript {
				appendLine(event.Text)
			}
			if err := writeJSON(event); err != nil {
				logger.Warn().Err(err).Msg("Failed to write transcription event")
				session.Cancel()
				return
			}
			if event.Type == entities.TranscriptionEventError {
				return
			}
		}
	}()

	// Uplink: audio frames and control messages from the client.
	go func() {
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				session.Cancel()
				return
			}
			switch msgType {
			case websocket.BinaryMessage:
				session.SendAudio(data)
			case websocket.TextMessage:
				var ctrl liveControlMessage
				if err := json.Unmarshal(data, &ctrl); err != nil {
					logger.Warn().Err(err).Msg("Undecodable live control frame")
					continue
				}
				switch ctrl.Type {
				case "stop":
					session.Stop()
				case "manual_note":
					if ctrl.Text != "" {
						appendLine("[Note: " + ctrl.Text + "]")
						_ = writeJSON(map[string]string{"type": "manual_note_ack", "text": ctrl.Text})
					}
				}
			}
		}
	}()

	<-downDone

	transcriptMu.Lock()
	full := strings.Join(transcript, " ")
	transcriptMu.Unlock()

	// The client may already be gone; persist on a detached context.
	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 10*time.Second)
	defer cancel()
	if err := h.consultService.SaveLiveTranscript(persistCtx, dump.ID, sessionID, full); err != nil {
		logger.Error().Err(err).Str("session_id", sessionID).Msg("Failed to persist live transcript")
	}
}
