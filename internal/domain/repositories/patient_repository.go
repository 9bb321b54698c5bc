package repositories

import (
	"context"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
)

// PatientRepository defines the interface for patient data operations
type PatientRepository interface {
	// Create creates a new patient
	Create(ctx context.Context, patient *entities.Patient) error

	// GetByID retrieves a patient by ID
	GetByID(ctx context.Context, id string) (*entities.Patient, error)

	// List retrieves all patients, optionally scoped to a clinic
	List(ctx context.Context, clinicID string) ([]*entities.Patient, error)

	// Update updates a patient
	Update(ctx context.Context, patient *entities.Patient) error

	// Delete deletes a patient and all dependent records
	Delete(ctx context.Context, id string) error
}
