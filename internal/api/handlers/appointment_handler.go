package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/parchi-ai/clinic-backend/internal/application/services"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/rs/zerolog/log"
)

// AppointmentHandler handles appointment requests
type AppointmentHandler struct {
	appointments repositories.AppointmentRepository
	reminders    *services.ReminderService
}

// NewAppointmentHandler creates a new appointment handler
func NewAppointmentHandler(appointments repositories.AppointmentRepository, reminders *services.ReminderService) *AppointmentHandler {
	return &AppointmentHandler{appointments: appointments, reminders: reminders}
}

// CreateAppointment handles POST /api/appointments
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
	var appointment entities.Appointment
	if err := json.NewDecoder(r.Body).Decode(&appointment); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	if appointment.PatientID == "" {
		respondWithError(w, http.StatusBadRequest, "patient_id is required")
		return
	}
	if appointment.StartTime.IsZero() {
		respondWithError(w, http.StatusBadRequest, "start_time is required")
		return
	}

	if appointment.ID == "" {
		appointment.ID = uuid.NewString()
	}
	if appointment.Status == "" {
		appointment.Status = entities.AppointmentStatusScheduled
	}
	now := time.Now()
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	if err := h.appointments.Create(r.Context(), &appointment); err != nil {
		respondWithServiceError(w, err)
		return
	}

	if h.reminders != nil {
		go func(appt entities.Appointment) {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := h.reminders.SendAppointmentConfirmation(ctx, &appt); err != nil {
				log.Warn().Err(err).Str("appointment_id", appt.ID).Msg("Failed to send appointment confirmation")
			}
		}(appointment)
	}

	respondWithJSON(w, http.StatusCreated, appointment)
}

// ListAppointments handles GET /api/appointments
// Optional day=YYYY-MM-DD narrows to a single day, patient_id to one patient.
func (h *AppointmentHandler) ListAppointments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if patientID := query.Get("patient_id"); patientID != "" {
		appointments, err := h.appointments.ListByPatient(r.Context(), patientID)
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithAppointments(w, appointments)
		return
	}

	if day := query.Get("day"); day != "" {
		from, err := time.Parse("2006-01-02", day)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "invalid day format (use YYYY-MM-DD)")
			return
		}
		appointments, err := h.appointments.ListBetween(r.Context(), from, from.AddDate(0, 0, 1))
		if err != nil {
			respondWithServiceError(w, err)
			return
		}
		respondWithAppointments(w, appointments)
		return
	}

	appointments, err := h.appointments.ListAll(r.Context())
	if err != nil {
		respondWithServiceError(w, err)
		return
	}
	respondWithAppointments(w, appointments)
}

// UpdateAppointmentStatus handles PATCH /api/appointments/{id}/status
func (h *AppointmentHandler) UpdateAppointmentStatus(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	var body struct {
		Status entities.AppointmentStatus `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request payload")
		return
	}
	switch body.Status {
	case entities.AppointmentStatusScheduled, entities.AppointmentStatusSeen,
		entities.AppointmentStatusCompleted, entities.AppointmentStatusCancelled:
	default:
		respondWithError(w, http.StatusBadRequest, "invalid appointment status")
		return
	}

	if err := h.appointments.UpdateStatus(r.Context(), id, body.Status); err != nil {
		respondWithServiceError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"id":     id,
		"status": body.Status,
	})
}

// DeleteAppointment handles DELETE /api/appointments/{id}
func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		respondWithError(w, http.StatusBadRequest, "appointment ID is required")
		return
	}

	if err := h.appointments.Delete(r.Context(), id); err != nil {
		respondWithServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func respondWithAppointments(w http.ResponseWriter, appointments []*entities.Appointment) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"appointments": appointments,
		"count":        len(appointments),
	})
}
