package repositories

import (
	"context"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
)

// DifferentialRepository defines the interface for differential diagnosis
// persistence. There is at most one current candidate set per
// patient/appointment scope: Replace deletes the prior set before inserting
// the new one. The delete+insert pair is not transactional; a concurrent
// reader may observe an empty interim state.
type DifferentialRepository interface {
	// Replace swaps the current candidate set for the given scope
	Replace(ctx context.Context, patientID, appointmentID string, candidates []*entities.DifferentialCandidate) error

	// ListByPatient retrieves the current candidate set, highest match first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.DifferentialCandidate, error)
}
