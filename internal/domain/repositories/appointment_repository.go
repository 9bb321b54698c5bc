package repositories

import (
	"context"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
)

// AppointmentRepository defines the interface for appointment data operations
type AppointmentRepository interface {
	// Create creates a new appointment
	Create(ctx context.Context, appointment *entities.Appointment) error

	// GetByID retrieves an appointment by ID
	GetByID(ctx context.Context, id string) (*entities.Appointment, error)

	// ListByPatient retrieves appointments for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.Appointment, error)

	// ListAll retrieves every appointment
	ListAll(ctx context.Context) ([]*entities.Appointment, error)

	// ListBetween retrieves appointments starting within [from, to)
	ListBetween(ctx context.Context, from, to time.Time) ([]*entities.Appointment, error)

	// UpdateStatus sets the status of an appointment
	UpdateStatus(ctx context.Context, id string, status entities.AppointmentStatus) error

	// Delete deletes an appointment
	Delete(ctx context.Context, id string) error
}
