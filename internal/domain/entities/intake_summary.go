package entities

import "time"

// IntakeSummary is an AI-generated structured digest of a patient's
// presenting complaint. Rows are immutable once written; each generation
// creates a new row and "latest" is resolved by CreatedAt at read time.
type IntakeSummary struct {
	ID             string    `json:"id" db:"id"`
	PatientID      string    `json:"patient_id" db:"patient_id"`
	ChiefComplaint string    `json:"chief_complaint" db:"chief_complaint"`
	Onset          string    `json:"onset" db:"onset"`
	Severity       string    `json:"severity" db:"severity"`
	Findings       []string  `json:"findings" db:"findings"`
	Context        string    `json:"context" db:"context"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}
