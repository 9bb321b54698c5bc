package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/parchi-ai/clinic-backend/internal/application/services"
)

// ChatHandler handles patient Q&A chat requests
type ChatHandler struct {
	chatService *services.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *services.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat handles POST /api/patients/{id}/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	var body struct {
		Message string                 `json:"message"`
		History []services.ChatMessage `json:"history"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if strings.TrimSpace(body.Message) == "" {
		respondWithError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, err := h.chatService.Answer(r.Context(), patientID, body.Message, body.History)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]string{
		"reply": reply,
	})
}

// Suggestions handles GET /api/patients/{id}/chat/suggestions
func (h *ChatHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")
	if patientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient ID is required")
		return
	}

	suggestions, err := h.chatService.Suggestions(r.Context(), patientID)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
	})
}
