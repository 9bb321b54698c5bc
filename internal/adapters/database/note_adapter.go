package database

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// NoteAdapter implements the NoteRepository interface
type NoteAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewNoteAdapter creates a new note adapter
func NewNoteAdapter(client *postgres.Client) repositories.NoteRepository {
	return &NoteAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new note
func (a *NoteAdapter) Create(ctx context.Context, note *entities.Note) error {
	record := goqu.Record{
		"id":         note.ID,
		"patient_id": note.PatientID,
		"content":    note.Content,
		"created_at": note.CreatedAt,
	}

	query, args, err := a.db.Insert("notes").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create note", err)
	}

	return nil
}

// ListByPatient retrieves notes for a patient, newest first
func (a *NoteAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.Note, error) {
	query, args, err := a.db.Select(
		"id", "patient_id", "content", "created_at",
	).From("notes").
		Where(goqu.Ex{"patient_id": patientID}).
		Order(goqu.I("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list notes", err)
	}
	defer rows.Close()

	var notes []*entities.Note
	for rows.Next() {
		note := &entities.Note{}
		err := rows.Scan(
			&note.ID,
			&note.PatientID,
			&note.Content,
			&note.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan note", err)
		}
		notes = append(notes, note)
	}

	return notes, nil
}
