package repositories

import (
	"context"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
)

// ReportInsightRepository defines the interface for report insight rows.
type ReportInsightRepository interface {
	// Create inserts a new report insight
	Create(ctx context.Context, insight *entities.ReportInsight) error

	// GetLatestByPatient retrieves the most recent insight for a patient
	GetLatestByPatient(ctx context.Context, patientID string) (*entities.ReportInsight, error)
}
