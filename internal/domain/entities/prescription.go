package entities

import "time"

// PrescribedMedication is one line item on a prescription.
type PrescribedMedication struct {
	Name      string `json:"name"`
	Dosage    string `json:"dosage"`
	Frequency string `json:"frequency"`
	Duration  string `json:"duration"`
}

// Prescription represents a prescription issued to a patient.
type Prescription struct {
	ID          string                 `json:"id" db:"id"`
	PatientID   string                 `json:"patient_id" db:"patient_id"`
	Diagnosis   string                 `json:"diagnosis" db:"diagnosis"`
	Medications []PrescribedMedication `json:"medications"`
	CreatedAt   time.Time              `json:"created_at" db:"created_at"`
}
