package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/parchi-ai/clinic-backend/internal/infrastructure/clients/postgres"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// DocumentAdapter implements the DocumentRepository interface
type DocumentAdapter struct {
	client *postgres.Client
	db     *goqu.Database
}

// NewDocumentAdapter creates a new document adapter
func NewDocumentAdapter(client *postgres.Client) repositories.DocumentRepository {
	return &DocumentAdapter{
		client: client,
		db:     goqu.New("postgres", client.DB()),
	}
}

// Create creates a new document record
func (a *DocumentAdapter) Create(ctx context.Context, doc *entities.Document) error {
	record := goqu.Record{
		"id":             doc.ID,
		"patient_id":     doc.PatientID,
		"title":          doc.Title,
		"doc_type":       doc.DocType,
		"extracted_text": doc.ExtractedText,
		"uploaded_at":    doc.UploadedAt,
	}

	query, args, err := a.db.Insert("documents").Rows(record).ToSQL()
	if err != nil {
		return apperrors.NewInternalError("failed to build insert query", err)
	}

	_, err = a.client.DB().ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.NewInternalError("failed to create document", err)
	}

	return nil
}

// GetByID retrieves a document by ID
func (a *DocumentAdapter) GetByID(ctx context.Context, id string) (*entities.Document, error) {
	docs, err := a.list(ctx, a.selectDocuments().Where(goqu.Ex{"id": id}))
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("document with id %s not found", id))
	}
	return docs[0], nil
}

// ListByPatient retrieves documents for a patient, newest first
func (a *DocumentAdapter) ListByPatient(ctx context.Context, patientID string) ([]*entities.Document, error) {
	return a.list(ctx, a.selectDocuments().Where(goqu.Ex{"patient_id": patientID}))
}

// ListAll retrieves all documents, newest first
func (a *DocumentAdapter) ListAll(ctx context.Context) ([]*entities.Document, error) {
	return a.list(ctx, a.selectDocuments())
}

func (a *DocumentAdapter) selectDocuments() *goqu.SelectDataset {
	return a.db.Select(
		"id", "patient_id", "title", "doc_type", "extracted_text", "uploaded_at",
	).From("documents").
		Order(goqu.I("uploaded_at").Desc())
}

func (a *DocumentAdapter) list(ctx context.Context, ds *goqu.SelectDataset) ([]*entities.Document, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.NewInternalError("failed to build list query", err)
	}

	rows, err := a.client.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.NewInternalError("failed to list documents", err)
	}
	defer rows.Close()

	var docs []*entities.Document
	for rows.Next() {
		doc := &entities.Document{}
		var title, docType, extracted sql.NullString

		err := rows.Scan(
			&doc.ID,
			&doc.PatientID,
			&title,
			&docType,
			&extracted,
			&doc.UploadedAt,
		)
		if err != nil {
			return nil, apperrors.NewInternalError("failed to scan document", err)
		}

		doc.Title = title.String
		doc.DocType = docType.String
		doc.ExtractedText = extracted.String

		docs = append(docs, doc)
	}

	return docs, nil
}
