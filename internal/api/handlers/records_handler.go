package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/parchi-ai/clinic-backend/internal/application/services"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
)

// RecordsHandler handles clinical record requests: visits, documents,
// prescriptions, manual notes, and report analysis.
type RecordsHandler struct {
	visits        repositories.VisitRepository
	documents     repositories.DocumentRepository
	prescriptions repositories.PrescriptionRepository
	notes         repositories.NoteRepository
	reports       repositories.ReportInsightRepository
	consults      *services.ConsultService
}

// NewRecordsHandler creates a new clinical records handler
func NewRecordsHandler(
	visits repositories.VisitRepository,
	documents repositories.DocumentRepository,
	prescriptions repositories.PrescriptionRepository,
	notes repositories.NoteRepository,
	reports repositories.ReportInsightRepository,
	consults *services.ConsultService,
) *RecordsHandler {
	return &RecordsHandler{
		visits:        visits,
		documents:     documents,
		prescriptions: prescriptions,
		notes:         notes,
		reports:       reports,
		consults:      consults,
	}
}

// CreateVisit handles POST /api/patients/{id}/visits
func (h *RecordsHandler) CreateVisit(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")

	var visit entities.Visit
	if err := json.NewDecoder(r.Body).Decode(&visit); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if visit.DoctorNotesText == "" && visit.SummaryAI == "" {
		respondWithError(w, http.StatusBadRequest, "visit notes or summary required")
		return
	}

	visit.ID = uuid.NewString()
	visit.PatientID = patientID
	if visit.VisitTime.IsZero() {
		visit.VisitTime = time.Now()
	}
	visit.CreatedAt = time.Now()

	if err := h.visits.Create(r.Context(), &visit); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, visit)
}

// ListVisits handles GET /api/patients/{id}/visits
func (h *RecordsHandler) ListVisits(w http.ResponseWriter, r *http.Request) {
	visits, err := h.visits.ListByPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"visits": visits,
		"count":  len(visits),
	})
}

// CreateDocument handles POST /api/patients/{id}/documents
// The extracted text is provided by the caller; OCR happens upstream.
func (h *RecordsHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")

	var doc entities.Document
	if err := json.NewDecoder(r.Body).Decode(&doc); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if doc.Title == "" {
		respondWithError(w, http.StatusBadRequest, "title is required")
		return
	}

	doc.ID = uuid.NewString()
	doc.PatientID = patientID
	doc.UploadedAt = time.Now()

	if err := h.documents.Create(r.Context(), &doc); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, doc)
}

// ListDocuments handles GET /api/patients/{id}/documents
func (h *RecordsHandler) ListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.documents.ListByPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"documents": docs,
		"count":     len(docs),
	})
}

// AnalyzeDocument handles POST /api/documents/{id}/analyze
func (h *RecordsHandler) AnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := h.documents.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}

	insight, err := h.consults.AnalyzeReport(r.Context(), doc)
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, insight)
}

// GetLatestReportInsight handles GET /api/patients/{id}/report-insight
func (h *RecordsHandler) GetLatestReportInsight(w http.ResponseWriter, r *http.Request) {
	insight, err := h.reports.GetLatestByPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, insight)
}

// CreatePrescription handles POST /api/patients/{id}/prescriptions
func (h *RecordsHandler) CreatePrescription(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")

	var prescription entities.Prescription
	if err := json.NewDecoder(r.Body).Decode(&prescription); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if len(prescription.Medications) == 0 {
		respondWithError(w, http.StatusBadRequest, "at least one medication is required")
		return
	}

	prescription.ID = uuid.NewString()
	prescription.PatientID = patientID
	prescription.CreatedAt = time.Now()

	if err := h.prescriptions.Create(r.Context(), &prescription); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, prescription)
}

// ListPrescriptions handles GET /api/patients/{id}/prescriptions
func (h *RecordsHandler) ListPrescriptions(w http.ResponseWriter, r *http.Request) {
	prescriptions, err := h.prescriptions.ListByPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"prescriptions": prescriptions,
		"count":         len(prescriptions),
	})
}

// CreateNote handles POST /api/patients/{id}/notes
func (h *RecordsHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	patientID := r.PathValue("id")

	var note entities.Note
	if err := json.NewDecoder(r.Body).Decode(&note); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if note.Content == "" {
		respondWithError(w, http.StatusBadRequest, "content is required")
		return
	}

	note.ID = uuid.NewString()
	note.PatientID = patientID
	note.CreatedAt = time.Now()

	if err := h.notes.Create(r.Context(), &note); err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, note)
}

// ListNotes handles GET /api/patients/{id}/notes
func (h *RecordsHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.notes.ListByPatient(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"notes": notes,
		"count": len(notes),
	})
}
