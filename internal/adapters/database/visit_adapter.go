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

// VisitAdapter implements the VisitRepository interface
type VisitAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewVisitAdapter creates a new visit adapter
func NewVisitAdapter(client *postgres.Client) repositories.VisitRepository {
	return &VisitAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new visit record
func (a *VisitAdapter) Create(ctx context.Context, visit *entities.Visit) error {
	soap := []byte("null")
	if visit.SOAPAI != nil {
		var err error
		if soap, err = json.Marshal(visit.SOAPAI); err != nil {
			return apperrors.NewInternalError("failed to marshal soap note", err)
		}
	}

	record := goqu.Record{
		"id":                visit.ID,
		"patient_id":        visit.PatientID,
		"visit_time":        visit.VisitTime,
		"doctor_notes_text": visit.DoctorNotesText,
		"summary_ai":        visit.SummaryAI,
		"soap_ai":           soap,
		"created_at":        visit.CreatedAt,
	}

	query, args, err := a.db.Insert("visits").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create visit", err)
	}

	return nil
}

// ListByPatient retrieves visits for a patient, newest first
func (a *VisitAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.Visit, error) {
	return a.list(ctx, a.selectVisits().Where(goqu.Ex{"patient_id": patientID}))
}

// ListAll retrieves all visits, newest first
func (a *VisitAdapter) ListAll(ctx context.Context) ([]*entities.Visit, error) {
	return a.list(ctx, a.selectVisits())
}

func (a *VisitAdapter) selectVisits() *goqu.SelectDataset {
	return a.db.Select(
		"id", "patient_id", "visit_time", "doctor_notes_text",
		"summary_ai", "soap_ai", "created_at",
	).From("visits").
		Order(goqu.I("visit_time").Desc())
}

func (a *VisitAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Visit, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list visits", err)
	}
	defer rows.Close()

	var visits []*entities.Visit
	for rows.Next() {
		visit := &entities.Visit{}
		var notes, summary sql.NullString
		var soap []byte

		err := rows.Scan(
			&visit.ID,
			&visit.PatientID,
			&visit.VisitTime,
			&notes,
			&summary,
			&soap,
			&visit.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan visit", err)
		}

		visit.DoctorNotesText = notes.String
		visit.SummaryAI = summary.String
		if len(soap) > 0 && string(soap) != "null" {
			var s entities.SOAPNote
			if err := json.Unmarshal(soap, &s); err == nil {
				visit.SOAPAI = &s
			}
		}

		visits = append(visits, visit)
	}

	return visits, nil
}
