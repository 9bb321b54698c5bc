package handlers

import (
	"net/http"
	"strings"

	"github.com/parchi-ai/clinic-backend/internal/application/services"
)

// SearchHandler handles smart patient search requests
type SearchHandler struct {
	searchService *services.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(searchService *services.SearchService) *SearchHandler {
	return &SearchHandler{searchService: searchService}
}

// Search handles GET /api/search?q=...&clinic_id=...
func (h *SearchHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondWithError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}
	clinicID := r.URL.Query().Get("clinic_id")

	matches, err := h.searchService.Search(r.Context(), clinicID, query)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}
