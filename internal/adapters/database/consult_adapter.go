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

// ConsultAdapter implements the ConsultRepository interface
type ConsultAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewConsultAdapter creates a new consult session adapter
func NewConsultAdapter(client *postgres.Client) repositories.ConsultRepository {
	return &ConsultAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

var consultColumns = []any{
	"id", "patient_id", "started_at", "ended_at",
	"transcript_text", "soap_note", "insights",
}

// Create creates a new consult session
func (a *ConsultAdapter) Create(ctx context.Context, session *entities.ConsultSession) error {
	soap, insights, err := marshalConsultJSON(session)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal consult fields", err)
	}

	record := goqu.Record{
		"id":              session.ID,
		"patient_id":      session.PatientID,
		"started_at":      session.StartedAt,
		"ended_at":        session.EndedAt,
		"transcript_text": session.TranscriptText,
		"soap_note":       soap,
		"insights":        insights,
	}

	query, args, err := a.db.Insert("consult_sessions").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create consult session", err)
	}

	return nil
}

// GetByID retrieves a consult session by ID
func (a *ConsultAdapter) GetByID(ctx context.Context, id string) (*entities.ConsultSession, error) {
	query, args, err := a.db.Select(consultColumns...).
		From("consult_sessions").
		Where(goqu.Ex{"id": id}).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build query", err)
	}

	session, err := scanConsult(a.client.DB().QueryRowContext(ctx, query, args...))
	if err == sql.ErrNoRows {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("consult session with id %s not found", id))
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to get consult session", err)
	}
	return session, nil
}

// Update updates a consult session
func (a *ConsultAdapter) Update(ctx context.Context, session *entities.ConsultSession) error {
	soap, insights, err := marshalConsultJSON(session)
	if err != nil {
		return apperrors.NewInternalError("failed to marshal consult fields", err)
	}

	record := goqu.Record{
		"ended_at":        session.EndedAt,
		"transcript_text": session.TranscriptText,
		"soap_note":       soap,
		"insights":        insights,
	}

	query, args, err := a.db.Update("consult_sessions").
		Set(record).
		Where(goqu.Ex{"id": session.ID}).
		ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build update query", err)
	}

	result, err := a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to update consult session", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return apperrors.NewInternalError("failed to get rows affected", err)
	}
	if rowsAffected == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("consult session with id %s not found", session.ID))
	}

	return nil
}

// ListByPatient retrieves consult sessions for a patient, newest first
func (a *ConsultAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.ConsultSession, error) {
	query, args, err := a.db.Select(consultColumns...).
		From("consult_sessions").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("started_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list consult sessions", err)
	}
	defer rows.Close()

	var sessions []*entities.ConsultSession
	for rows.Next() {
		session, err := scanConsult(rows)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan consult session", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, nil
}

func scanConsult(row rowScanner) (*entities.ConsultSession, error) {
	session := &entities.ConsultSession{}
	var endedAt sql.NullTime
	var transcript sql.NullString
	var soap, insights []byte

	err := row.Scan(
		&session.ID,
		&session.PatientID,
		&session.StartedAt,
		&endedAt,
		&transcript,
		&soap,
		&insights,
	)
	if err != nil {
		return nil, err
	}

	if endedAt.Valid {
		session.EndedAt = &endedAt.Time
	}
	session.TranscriptText = transcript.String

	if len(soap) > 0 && string(soap) != "null" {
		var s entities.SOAPNote
		if err := json.Unmarshal(soap, &s); err == nil {
			session.SOAPNote = &s
		}
	}
	if len(insights) > 0 && string(insights) != "null" {
		var i entities.ConsultInsights
		if err := json.Unmarshal(insights, &i); err == nil {
			session.Insights = &i
		}
	}

	return session, nil
}

func marshalConsultJSON(session *entities.ConsultSession) (soap, insights []byte, err error) {
	soap = []byte("null")
	if session.SOAPNote != nil {
		if soap, err = json.Marshal(session.SOAPNote); err != nil {
			return
		}
	}
	insights = []byte("null")
	if session.Insights != nil {
		insights, err = json.Marshal(session.Insights)
	}
	return
}
