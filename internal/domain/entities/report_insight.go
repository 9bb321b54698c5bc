package entities

import "time"

// InsightFlag is one highlighted finding in a report insight.
type InsightFlag struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ReportInsight is an AI-generated digest of a patient's uploaded reports.
type ReportInsight struct {
	ID        string        `json:"id" db:"id"`
	PatientID string        `json:"patient_id" db:"patient_id"`
	Summary   string        `json:"summary" db:"summary"`
	Flags     []InsightFlag `json:"flags"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
}
