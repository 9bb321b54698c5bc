package entities

import "time"

// ClinicalDump is a raw, lightly-structured consultation transcript or note
// attached to a patient and (optionally) a consult session.
type ClinicalDump struct {
	ID               string    `json:"id" db:"id"`
	PatientID        string    `json:"patient_id" db:"patient_id"`
	ConsultSessionID string    `json:"consult_session_id" db:"consult_session_id"`
	TranscriptText   string    `json:"transcript_text" db:"transcript_text"`
	CombinedDump     string    `json:"combined_dump" db:"combined_dump"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// BestText prefers the combined dump over the bare transcript.
func (d *ClinicalDump) BestText() string {
	if d.CombinedDump != "" {
		return d.CombinedDump
	}
	return d.TranscriptText
}
