package database

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// DifferentialAdapter implements the DifferentialRepository interface.
// Replace runs delete-then-insert without a wrapping transaction, so a
// concurrent reader can briefly observe an empty set.
type DifferentialAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDifferentialAdapter creates a new differential diagnosis adapter
func NewDifferentialAdapter(client *postgres.Client) repositories.DifferentialRepository {
	return &DifferentialAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Replace swaps the current candidate set. The whole patient scope is
// cleared regardless of appointment so a read never mixes rows from
// different generation runs.
func (a *DifferentialAdapter) Replace(ctx context.Context, patientID, appointmentID string, candidates []*entities.DifferentialCandidate) error {
	del := a.db.Delete("differential_diagnoses").Where(goqu.Ex{"patient_id": patientID})

	query, args, err := del.ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to delete differential diagnoses", err)
	}

	if len(candidates) == 0 {
		return nil
	}

	records := make([]any, 0, len(candidates))
	for _, c := range candidates {
		records = append(records, goqu.Record{
			"id":             c.ID,
			"patient_id":     c.PatientID,
			"appointment_id": nullable(c.AppointmentID),
			"condition_name": c.ConditionName,
			"match_pct":      c.MatchPct,
			"rationale":      c.Rationale,
			"created_at":     c.CreatedAt,
		})
	}

	query, args, err = a.db.Insert("differential_diagnoses").Rows(records...).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}
	if _, err := a.client.DB().ExecContext(ctx, query, args...); err != nil {
		return apperrors.NewInternalError("failed to insert differential diagnoses", err)
	}

	return nil
}

// ListByPatient retrieves the current candidate set, highest match first
func (a *DifferentialAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.DifferentialCandidate, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "appointment_id", "condition_name",
		"match_pct", "rationale", "created_at",
	).From("differential_diagnoses").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("match_pct").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list differential diagnoses", err)
	}
	defer rows.Close()

	var candidates []*entities.DifferentialCandidate
	for rows.Next() {
		candidate := &entities.DifferentialCandidate{}
		var appointmentID, rationale sql.NullString

		err := rows.Scan(
			&candidate.ID,
			&candidate.PatientID,
			&appointmentID,
			&candidate.ConditionName,
			&candidate.MatchPct,
			&rationale,
			&candidate.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan differential diagnosis", err)
		}

		candidate.AppointmentID = appointmentID.String
		candidate.Rationale = rationale.String

		candidates = append(candidates, candidate)
	}

	return candidates, nil
}
