package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// PatientAdapter implements the PatientRepository interface
type PatientAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewPatientAdapter creates a new patient adapter
func NewPatientAdapter(client *postgres.Client) repositories.PatientRepository {
	return &PatientAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var patientColumns = []any{
	"id", "clinic_id", "name", "age", "gender", "phone", "email", "address",
	"height_cm", "weight_kg", "allergies", "medications", "conditions",
	"vitals", "created_at", "updated_at",
}

// Create creates a new patient
func (a *PatientAdapter) Create(ctx context.Context, patient *entities.Patient) error {
	allergies, medications, conditions, vitals, err := marshalPatientJSON(patient)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal patient fields", err)
	}

	record := goqu.Record{
		"id":          patient.ID,
		"clinic_id":   patient.ClinicID,
		"name":        patient.Name,
		"age":         patient.Age,
		"gender":      patient.Gender,
		"phone":       patient.Phone,
		"email":       patient.Email,
		"address":     patient.Address,
		"height_cm":   patient.HeightCm,
		"weight_kg":   patient.WeightKg,
		"allergies":   allergies,
		"medications": medications,
		"conditions":  conditions,
		"vitals":      vitals,
		"created_at":  patient.CreatedAt,
		"updated_at":  patient.UpdatedAt,
	}

	query, args, err := a.db.Insert("patients").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create patient", err)
	}

	return nil
}

// GetByID retrieves a patient by ID
func (a *PatientAdapter) GetByID(ctx context.Context, id string) (*entities.Patient, error) {
	query, args, err := a.db.Select(patientColumns...).
		From("patients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	row := a.client.DB().QueryRowContext(ctx, query, args...)
	patient, err := scanPatient(row)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get patient", err)
	}
	return patient, nil
}

// List retrieves all patients, optionally scoped to a clinic
func (a *PatientAdapter) List(ctx context.Context, clinicID string) ([]*entities.Patient, error) {
	ds := a.db.Select(patientColumns...).From("patients")
	if clinicID != "" {
		ds = ds.Where(goqu.Ex{"clinic_id": clinicID})
	}
	ds = ds.Order(goqu.I("name").Asc())

	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list patients", err)
	}
	defer rows.Close()

	var patients []*entities.Patient
	for rows.Next() {
		patient, err := scanPatient(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan patient", err)
		}
		patients = append(patients, patient)
	}

	return patients, nil
}

// Update updates a patient
func (a *PatientAdapter) Update(ctx context.Context, patient *entities.Patient) error {
	patient.UpdatedAt = time.Now()

	allergies, medications, conditions, vitals, err := marshalPatientJSON(patient)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal patient fields", err)
	}

	record := goqu.Record{
		"name":        patient.Name,
		"age":         patient.Age,
		"gender":      patient.Gender,
		"phone":       patient.Phone,
		"email":       patient.Email,
		"address":     patient.Address,
		"height_cm":   patient.HeightCm,
		"weight_kg":   patient.WeightKg,
		"allergies":   allergies,
		"medications": medications,
		"conditions":  conditions,
		"vitals":      vitals,
		"updated_at":  patient.UpdatedAt,
	}

	query, args, err := a.db.Update("patients").
		Set(record).
		Where(goqu.Ex{"id": patient.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", patient.ID))
	}

	return nil
}

// Delete deletes a patient and all dependent records
func (a *PatientAdapter) Delete(ctx context.Context, id string) error {
	// Dependent tables carry ON DELETE CASCADE foreign keys.
	query, args, err := a.db.Delete("patients").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build delete query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to delete patient", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("patient with id %s not found", id))
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*entities.Patient, error) {
	patient := &entities.Patient{}
	var phone, email, address sql.NullString
	var allergies, medications, conditions, vitals []byte

	err := row.Scan(
		&patient.ID,
		&patient.ClinicID,
		&patient.Name,
		&patient.Age,
		&patient.Gender,
		&phone,
		&email,
		&address,
		&patient.HeightCm,
		&patient.WeightKg,
		&allergies,
		&medications,
		&conditions,
		&vitals,
		&patient.CreatedAt,
		&patient.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	patient.Phone = phone.String
	patient.Email = email.String
	patient.Address = address.String

	if len(allergies) > 0 {
		_ = json.Unmarshal(allergies, &patient.Allergies)
	}
	if len(medications) > 0 {
		_ = json.Unmarshal(medications, &patient.Medications)
	}
	if len(conditions) > 0 {
		_ = json.Unmarshal(conditions, &patient.Conditions)
	}
	if len(vitals) > 0 {
		var v entities.Vitals
		if err := json.Unmarshal(vitals, &v); err == nil {
			patient.Vitals = &v
		}
	}

	return patient, nil
}

func marshalPatientJSON(patient *entities.Patient) (allergies, medications, conditions, vitals []byte, err error) {
	if allergies, err = json.Marshal(orEmpty(patient.Allergies)); err != nil {
		return
	}
	if medications, err = json.Marshal(orEmpty(patient.Medications)); err != nil {
		return
	}
	if conditions, err = json.Marshal(orEmpty(patient.Conditions)); err != nil {
		return
	}
	if patient.Vitals != nil {
		vitals, err = json.Marshal(patient.Vitals)
	} else {
		vitals = []byte("null")
	}
	return
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
