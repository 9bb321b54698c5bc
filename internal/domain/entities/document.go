package entities

import "time"

// Document represents an uploaded file (lab report, referral, imaging).
type Document struct {
	ID            string    `json:"id" db:"id"`
	PatientID     string    `json:"patient_id" db:"patient_id"`
	Title         string    `json:"title" db:"title"`
	DocType       string    `json:"doc_type" db:"doc_type"`
	ExtractedText string    `json:"extracted_text" db:"extracted_text"`
	UploadedAt    time.Time `json:"uploaded_at" db:"uploaded_at"`
}
