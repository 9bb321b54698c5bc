package routes

import (
	"net/http"

	"github.com/parchi-ai/clinic-backend/internal/api/handlers"
	"github.com/parchi-ai/clinic-backend/internal/api/middleware"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	patientHandler     *handlers.PatientHandler
	appointmentHandler *handlers.AppointmentHandler
	aiHandler          *handlers.AIHandler
	chatHandler        *handlers.ChatHandler
	searchHandler      *handlers.SearchHandler
	consultHandler     *handlers.ConsultHandler
	recordsHandler     *handlers.RecordsHandler

	metrics *observability.Metrics
}

// NewRouter creates a new router
func NewRouter(
	patientHandler *handlers.PatientHandler,
	appointmentHandler *handlers.AppointmentHandler,
	aiHandler *handlers.AIHandler,
	chatHandler *handlers.ChatHandler,
	searchHandler *handlers.SearchHandler,
	consultHandler *handlers.ConsultHandler,
	recordsHandler *handlers.RecordsHandler,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		patientHandler:     patientHandler,
		appointmentHandler: appointmentHandler,
		aiHandler:          aiHandler,
		chatHandler:        chatHandler,
		searchHandler:      searchHandler,
		consultHandler:     consultHandler,
		recordsHandler:     recordsHandler,

		metrics: metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	// Health check endpoint
	r.mux.HandleFunc("GET /health", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			return
		}
	})

	// Patient endpoints
	r.mux.HandleFunc("POST /api/patients", r.patientHandler.CreatePatient)
	r.mux.HandleFunc("GET /api/patients", r.patientHandler.ListPatients)
	r.mux.HandleFunc("GET /api/patients/{id}", r.patientHandler.GetPatient)
	r.mux.HandleFunc("PUT /api/patients/{id}", r.patientHandler.UpdatePatient)
	r.mux.HandleFunc("DELETE /api/patients/{id}", r.patientHandler.DeletePatient)

	// Appointment endpoints
	r.mux.HandleFunc("POST /api/appointments", r.appointmentHandler.CreateAppointment)
	r.mux.HandleFunc("GET /api/appointments", r.appointmentHandler.ListAppointments)
	r.mux.HandleFunc("PATCH /api/appointments/{id}/status", r.appointmentHandler.UpdateAppointmentStatus)
	r.mux.HandleFunc("DELETE /api/appointments/{id}", r.appointmentHandler.DeleteAppointment)

	// AI generation endpoints
	r.mux.HandleFunc("POST /api/patients/{id}/intake-summary", r.aiHandler.GenerateIntakeSummary)
	r.mux.HandleFunc("GET /api/patients/{id}/intake-summary", r.aiHandler.GetLatestIntakeSummary)
	r.mux.HandleFunc("POST /api/patients/{id}/differential", r.aiHandler.GenerateDifferential)
	r.mux.HandleFunc("GET /api/patients/{id}/differential", r.aiHandler.GetDifferential)

	// Chat endpoints
	r.mux.HandleFunc("POST /api/patients/{id}/chat", r.chatHandler.Chat)
	r.mux.HandleFunc("GET /api/patients/{id}/chat/suggestions", r.chatHandler.Suggestions)

	// Smart search endpoint
	r.mux.HandleFunc("GET /api/search", r.searchHandler.Search)

	// Consult endpoints
	r.mux.HandleFunc("POST /api/patients/{id}/consults", r.consultHandler.StartConsult)
	r.mux.HandleFunc("POST /api/consults/{id}/stop", r.consultHandler.StopConsult)
	r.mux.HandleFunc("POST /api/transcribe", r.consultHandler.TranscribeAudio)
	r.mux.HandleFunc("POST /api/patients/{id}/clinical-dump", r.consultHandler.SaveDump)
	r.mux.HandleFunc("GET /ws/consult-transcribe/{id}", r.consultHandler.LiveTranscribe)

	// Clinical record endpoints
	r.mux.HandleFunc("POST /api/patients/{id}/visits", r.recordsHandler.CreateVisit)
	r.mux.HandleFunc("GET /api/patients/{id}/visits", r.recordsHandler.ListVisits)
	r.mux.HandleFunc("POST /api/patients/{id}/documents", r.recordsHandler.CreateDocument)
	r.mux.HandleFunc("GET /api/patients/{id}/documents", r.recordsHandler.ListDocuments)
	r.mux.HandleFunc("POST /api/documents/{id}/analyze", r.recordsHandler.AnalyzeDocument)
	r.mux.HandleFunc("GET /api/patients/{id}/report-insight", r.recordsHandler.GetLatestReportInsight)
	r.mux.HandleFunc("POST /api/patients/{id}/prescriptions", r.recordsHandler.CreatePrescription)
	r.mux.HandleFunc("GET /api/patients/{id}/prescriptions", r.recordsHandler.ListPrescriptions)
	r.mux.HandleFunc("POST /api/patients/{id}/notes", r.recordsHandler.CreateNote)
	r.mux.HandleFunc("GET /api/patients/{id}/notes", r.recordsHandler.ListNotes)

	// Apply middleware in reverse order (last middleware wraps first)
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.CORSMiddleware(handler)

	return handler
}
