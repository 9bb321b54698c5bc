package repositories

import (
	"context"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
)

// VisitRepository defines the interface for visit history operations
type VisitRepository interface {
	// Create creates a new visit record
	Create(ctx context.Context, visit *entities.Visit) error

	// ListByPatient retrieves visits for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.Visit, error)

	// ListAll retrieves all visits, newest first
	ListAll(ctx context.Context) ([]*entities.Visit, error)
}

// DocumentRepository defines the interface for uploaded document operations
type DocumentRepository interface {
	// Create creates a new document record
	Create(ctx context.Context, doc *entities.Document) error

	// GetByID retrieves a document by ID
	GetByID(ctx context.Context, id string) (*entities.Document, error)

	// ListByPatient retrieves documents for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.Document, error)

	// ListAll retrieves all documents, newest first
	ListAll(ctx context.Context) ([]*entities.Document, error)
}

// ConsultRepository defines the interface for consult session operations
type ConsultRepository interface {
	// Create creates a new consult session
	Create(ctx context.Context, session *entities.ConsultSession) error

	// GetByID retrieves a consult session by ID
	GetByID(ctx context.Context, id string) (*entities.ConsultSession, error)

	// Update updates a consult session
	Update(ctx context.Context, session *entities.ConsultSession) error

	// ListByPatient retrieves consult sessions for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.ConsultSession, error)
}

// ClinicalDumpRepository defines the interface for clinical dump operations
type ClinicalDumpRepository interface {
	// Create creates a new clinical dump
	Create(ctx context.Context, dump *entities.ClinicalDump) error

	// Update updates a clinical dump
	Update(ctx context.Context, dump *entities.ClinicalDump) error

	// GetByID retrieves a clinical dump by ID
	GetByID(ctx context.Context, id string) (*entities.ClinicalDump, error)

	// ListByPatient retrieves clinical dumps for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.ClinicalDump, error)
}

// PrescriptionRepository defines the interface for prescription operations
type PrescriptionRepository interface {
	// Create creates a new prescription
	Create(ctx context.Context, prescription *entities.Prescription) error

	// ListByPatient retrieves prescriptions for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.Prescription, error)
}

// NoteRepository defines the interface for manual note operations
type NoteRepository interface {
	// Create creates a new note
	Create(ctx context.Context, note *entities.Note) error

	// ListByPatient retrieves notes for a patient, newest first
	ListByPatient(ctx context.Context, patientID string) ([]*entities.Note, error)
}
