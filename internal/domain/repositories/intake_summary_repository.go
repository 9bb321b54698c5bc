package repositories

import (
	"context"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
)

// IntakeSummaryRepository defines the interface for AI intake summary rows.
// Summaries are append-only: Create never overwrites an earlier row, and
// GetLatestByPatient resolves "current" by creation time.
type IntakeSummaryRepository interface {
	// Create inserts a new intake summary row
	Create(ctx context.Context, summary *entities.IntakeSummary) error

	// GetLatestByPatient retrieves the most recent summary for a patient
	GetLatestByPatient(ctx context.Context, patientID string) (*entities.IntakeSummary, error)
}
