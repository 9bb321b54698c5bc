package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/application/services"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/observability"
)

// AIHandler handles AI generation requests: intake summaries, differential
// diagnoses, and their read endpoints.
type AIHandler struct {
	intakeService       *services.IntakeSummaryService
	differentialService *services.DifferentialService
	differentials       repositories.DifferentialRepository
	eventBus            providers.EventBus
}

// NewAIHandler creates a new AI handler
func NewAIHandler(
	intakeService *services.IntakeSummaryService,
	differentialService *services.DifferentialService,
	differentials repositories.DifferentialRepository,
	eventBus providers.EventBus,
) *AIHandler {
	return &AIHandler{
		intakeService:       intakeService,
		differentialService: differentialService,
		differentials:       differentials,
		eventBus:            eventBus,
	}
}

// GenerateIntakeSummary handles POST /api/patients/{id}/intake-summary
// With Accept: text/event-stream the generation progress is streamed as SSE
// and the connection closes after the terminal event. Otherwise the call
// blocks and returns the finished summary.
func (h *AIHandler) GenerateIntakeSummary(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	if r.Header.Get("Accept") == "text/event-stream" {
		h.streamIntakeGeneration(w, r, patientID)
		return
	}

	summary, err := h.intakeService.Generate(r.Context(), patientID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, summary)
}

func (h *AIHandler) streamIntakeGeneration(w http.ResponseWriter, r *http.Request, patientID string) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		respondWithError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	logger := observability.LoggerFromContext(r.Context())

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	channel := providers.GetIntakeChannel(patientID)
	eventChan, err := h.eventBus.Subscribe(r.Context(), channel)
	if err != nil {
		logger.Error().Str("channel", channel).Err(err).Msg("Failed to subscribe to intake channel")
		respondWithError(w, http.StatusInternalServerError, "could not open event stream")
		return
	}
	defer h.eventBus.Unsubscribe(r.Context(), channel)

	sendSSE(w, "connected", map[string]interface{}{
		"patient_id": patientID,
		"timestamp":  time.Now(),
	})
	flusher.Flush()

	// Generation runs off the request context so a dropped SSE client does
	// not abort the summary mid-write.
	genCtx := context.WithoutCancel(r.Context())
	done := make(chan struct{})
	go func() {
		defer close(done)
		if _, err := h.intakeService.Generate(genCtx, patientID); err != nil {
			logger.Error().Str("patient_id", patientID).Err(err).Msg("Intake generation failed")
		}
	}()

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			sendSSE(w, "heartbeat", map[string]interface{}{"timestamp": time.Now()})
			flusher.Flush()
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if event == nil {
				continue
			}
			sendSSE(w, event.Type, event)
			flusher.Flush()
			if event.Type == "completed" || event.Type == "error" {
				<-done
				return
			}
		}
	}
}

func sendSSE(w http.ResponseWriter, eventType string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", eventType, payload)
}

// GetLatestIntakeSummary handles GET /api/patients/{id}/intake-summary
func (h *AIHandler) GetLatestIntakeSummary(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	summary, err := h.intakeService.GetLatest(r.Context(), patientID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, summary)
}

// GenerateDifferential handles POST /api/patients/{id}/differential
func (h *AIHandler) GenerateDifferential(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}
	appointmentID := r.URL.Query().Get("appointment_id")

	candidates, err := h.differentialService.Generate(r.Context(), patientID, appointmentID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

// GetDifferential handles GET /api/patients/{id}/differential
func (h *AIHandler) GetDifferential(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	candidates, err := h.differentials.ListByPatient(r.Context(), patientID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"candidates": candidates,
		"count":      len(candidates),
	})
}
