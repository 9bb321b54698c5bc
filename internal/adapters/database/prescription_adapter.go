package database

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// PrescriptionAdapter implements the PrescriptionRepository interface
type PrescriptionAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPrescriptionAdapter creates a new prescription adapter
func NewPrescriptionAdapter(client *postgres.Client) repositories.PrescriptionRepository {
	return &PrescriptionAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new prescription
func (a *PrescriptionAdapter) Create(ctx context.Context, prescription *entities.Prescription) error {
	medications, err := json.Marshal(prescription.Medications)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal medications", err)
	}

	record := goqu.Record{
		"id":          prescription.ID,
		"patient_id":  prescription.PatientID,
		"diagnosis":   prescription.Diagnosis,
		"medications": medications,
		"created_at":  prescription.CreatedAt,
	}

	query, args, err := a.db.Insert("prescriptions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create prescription", err)
	}

	return nil
}

// ListByPatient retrieves prescriptions for a patient, newest first
func (a *PrescriptionAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.Prescription, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "diagnosis", "medications", "created_at",
	).From("prescriptions").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list prescriptions", err)
	}
	defer rows.Close()

	var prescriptions []*entities.Prescription
	for rows.Next() {
		prescription := &entities.Prescription{}
		var diagnosis sql.NullString
		var medications []byte

		err := rows.Scan(
			&prescription.ID,
			&prescription.PatientID,
			&diagnosis,
			&medications,
			&prescription.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan prescription", err)
		}

		prescription.Diagnosis = diagnosis.String
		if len(medications) > 0 {
			_ = json.Unmarshal(medications, &prescription.Medications)
		}

		prescriptions = append(prescriptions, prescription)
	}

	return prescriptions, nil
}
