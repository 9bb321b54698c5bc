package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// IntakeSummaryAdapter implements the IntakeSummaryRepository interface.
// Summary rows are append-only; regeneration inserts a fresh row.
type IntakeSummaryAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewIntakeSummaryAdapter creates a new intake summary adapter
func NewIntakeSummaryAdapter(client *postgres.Client) repositories.IntakeSummaryRepository {
	return &IntakeSummaryAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new intake summary row
func (a *IntakeSummaryAdapter) Create(ctx context.Context, summary *entities.IntakeSummary) error {
	findings, err := json.Marshal(orEmpty(summary.Findings))
	if err != nil {
		return apperrors.NewInternalError("failed to marshal findings", err)
	}

	record := goqu.Record{
		"id":              summary.ID,
		"patient_id":      summary.PatientID,
		"chief_complaint": summary.ChiefComplaint,
		"onset":           summary.Onset,
		"severity":        summary.Severity,
		"findings":        findings,
		"context":         summary.Context,
		"created_at":      summary.CreatedAt,
	}

	query, args, err := a.db.Insert("ai_intake_summaries").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create intake summary", err)
	}

	return nil
}

// GetLatestByPatient retrieves the most recent summary for a patient
func (a *IntakeSummaryAdapter) GetLatestByPatient(ctx context.Context, patientID string) (*entities.IntakeSummary, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "chief_complaint", "onset", "severity",
		"findings", "context", "created_at",
	).From("ai_intake_summaries").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	summary := &entities.IntakeSummary{}
	var chiefComplaint, onset, severity, contextText sql.NullString
	var findings []byte

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&summary.ID,
		&summary.PatientID,
		&chiefComplaint,
		&onset,
		&severity,
		&findings,
		&contextText,
		&summary.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no intake summary for patient %s", patientID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get intake summary", err)
	}

	summary.ChiefComplaint = chiefComplaint.String
	summary.Onset = onset.String
	summary.Severity = severity.String
	summary.Context = contextText.String
	if len(findings) > 0 {
		_ = json.Unmarshal(findings, &summary.Findings)
	}
	if summary.Findings == nil {
		summary.Findings = []string{}
	}

	return summary, nil
}
