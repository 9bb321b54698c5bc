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

// ReportInsightAdapter implements the ReportInsightRepository interface
type ReportInsightAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewReportInsightAdapter creates a new report insight adapter
func NewReportInsightAdapter(client *postgres.Client) repositories.ReportInsightRepository {
	return &ReportInsightAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create inserts a new report insight
func (a *ReportInsightAdapter) Create(ctx context.Context, insight *entities.ReportInsight) error {
	flags, err := json.Marshal(insight.Flags)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal insight flags", err)
	}

	record := goqu.Record{
		"id":         insight.ID,
		"patient_id": insight.PatientID,
		"summary":    insight.Summary,
		"flags":      flags,
		"created_at": insight.CreatedAt,
	}

	query, args, err := a.db.Insert("report_insights").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create report insight", err)
	}

	return nil
}

// GetLatestByPatient retrieves the most recent insight for a patient
func (a *ReportInsightAdapter) GetLatestByPatient(ctx context.Context, patientID string) (*entities.ReportInsight, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "summary", "flags", "created_at",
	).From("report_insights").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc()).
		Limit(1).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	insight := &entities.ReportInsight{}
	var summary sql.NullString
	var flags []byte

	err = a.client.DB().QueryRowContext(ctx, query, args...).Scan(
		&insight.ID,
		&insight.PatientID,
		&summary,
		&flags,
		&insight.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("no report insight for patient %s", patientID))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get report insight", err)
	}

	insight.Summary = summary.String
	if len(flags) > 0 {
		_ = json.Unmarshal(flags, &insight.Flags)
	}

	return insight, nil
}
