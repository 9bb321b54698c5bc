package entities

import "time"

// SOAPNote is a structured consultation note.
type SOAPNote struct {
	Subjective string `json:"subjective"`
	Objective  string `json:"objective"`
	Assessment string `json:"assessment"`
	Plan       string `json:"plan"`
}

// Visit represents a completed patient visit
type Visit struct {
	ID              string    `json:"id" db:"id"`
	PatientID       string    `json:"patient_id" db:"patient_id"`
	VisitTime       time.Time `json:"visit_time" db:"visit_time"`
	DoctorNotesText string    `json:"doctor_notes_text" db:"doctor_notes_text"`
	SummaryAI       string    `json:"summary_ai" db:"summary_ai"`
	SOAPAI          *SOAPNote `json:"soap_ai,omitempty"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// BestSummary returns the AI summary if present, else the raw doctor notes.
func (v *Visit) BestSummary() string {
	if v.SummaryAI != "" {
		return v.SummaryAI
	}
	return v.DoctorNotesText
}
