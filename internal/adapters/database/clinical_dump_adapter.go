package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// ClinicalDumpAdapter implements the ClinicalDumpRepository interface
type ClinicalDumpAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewClinicalDumpAdapter creates a new clinical dump adapter
func NewClinicalDumpAdapter(client *postgres.Client) repositories.ClinicalDumpRepository {
	return &ClinicalDumpAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var clinicalDumpColumns = []any{
	"id", "patient_id", "consult_session_id", "transcript_text",
	"combined_dump", "created_at", "updated_at",
}

// Create creates a new clinical dump
func (a *ClinicalDumpAdapter) Create(ctx context.Context, dump *entities.ClinicalDump) error {
	record := goqu.Record{
		"id":                 dump.ID,
		"patient_id":         dump.PatientID,
		"consult_session_id": nullable(dump.ConsultSessionID),
		"transcript_text":    dump.TranscriptText,
		"combined_dump":      dump.CombinedDump,
		"created_at":         dump.CreatedAt,
		"updated_at":         dump.UpdatedAt,
	}

	query, args, err := a.db.Insert("clinical_dumps").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create clinical dump", err)
	}

	return nil
}

// Update updates a clinical dump
func (a *ClinicalDumpAdapter) Update(ctx context.Context, dump *entities.ClinicalDump) error {
	dump.UpdatedAt = time.Now()

	record := goqu.Record{
		"transcript_text": dump.TranscriptText,
		"combined_dump":   dump.CombinedDump,
		"updated_at":      dump.UpdatedAt,
	}

	query, args, err := a.db.Update("clinical_dumps").
		Set(record).
		Where(goqu.Ex{"id": dump.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update clinical dump", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("clinical dump with id %s not found", dump.ID))
	}

	return nil
}

// GetByID retrieves a clinical dump by ID
func (a *ClinicalDumpAdapter) GetByID(ctx context.Context, id string) (*entities.ClinicalDump, error) {
	query, args, err := a.db.Select(clinicalDumpColumns...).
		From("clinical_dumps").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	dump, err := scanClinicalDump(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("clinical dump with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get clinical dump", err)
	}
	return dump, nil
}

// ListByPatient retrieves clinical dumps for a patient, newest first
func (a *ClinicalDumpAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.ClinicalDump, error) {
	query, args, err := a.db.Select(clinicalDumpColumns...).
		From("clinical_dumps").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list clinical dumps", err)
	}
	defer rows.Close()

	var dumps []*entities.ClinicalDump
	for rows.Next() {
		dump, err := scanClinicalDump(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan clinical dump", err)
		}
		dumps = append(dumps, dump)
	}

	return dumps, nil
}

func scanClinicalDump(row rowScanner) (*entities.ClinicalDump, error) {
	dump := &entities.ClinicalDump{}
	var consultSessionID, transcript, combined sql.NullString

	err := row.Scan(
		&dump.ID,
		&dump.PatientID,
		&consultSessionID,
		&transcript,
		&combined,
		&dump.CreatedAt,
		&dump.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	dump.ConsultSessionID = consultSessionID.String
	dump.TranscriptText = transcript.String
	dump.CombinedDump = combined.String

	return dump, nil
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
