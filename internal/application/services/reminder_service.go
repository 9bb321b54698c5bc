package services

import (
	"context"
	"fmt"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/rs/zerolog/log"
)

// ReminderService sends appointment confirmations to patients over the
// configured messaging channel. When no sender is configured the service is
// a no-op so appointment booking never depends on messaging availability.
type ReminderService struct {
	patients repositories.PatientRepository
	sender   providers.MessageSender
}

// NewReminderService creates a new reminder service
func NewReminderService(patients repositories.PatientRepository, sender providers.MessageSender) *ReminderService {
	return &ReminderService{patients: patients, sender: sender}
}

// SendAppointmentConfirmation sends a booking confirmation for the
// appointment. Patients without a phone number on file are skipped.
func (s *ReminderService) SendAppointmentConfirmation(ctx context.Context, appointment *entities.Appointment) error {
	if s.sender == nil {
		return nil
	}

	patient, err := s.patients.GetByID(ctx, appointment.PatientID)
	if err != nil {
		return err
	}
	if patient.Phone == "" {
		log.Debug().Str("patient_id", patient.ID).Msg("Patient has no phone number, skipping confirmation")
		return nil
	}

	body := fmt.Sprintf(
		"Hi %s, your appointment on %s is confirmed. Reply here if you need to reschedule.",
		patient.Name,
		appointment.StartTime.Format("Mon, 02 Jan 2006 at 3:04 PM"),
	)

	messageID, err := s.sender.SendText(ctx, patient.Phone, body)
	if err != nil {
		return err
	}

	log.Info().
		Str("patient_id", patient.ID).
		Str("appointment_id", appointment.ID).
		Str("message_id", messageID).
		Msg("Appointment confirmation sent")
	return nil
}
