package entities

import "time"

// DifferentialCandidate is one ranked candidate condition for a patient.
// MatchPct is always within [0,100].
type DifferentialCandidate struct {
	ID            string    `json:"id" db:"id"`
	PatientID     string    `json:"patient_id" db:"patient_id"`
	AppointmentID string    `json:"appointment_id,omitempty" db:"appointment_id"`
	ConditionName string    `json:"condition_name" db:"condition_name"`
	MatchPct      int       `json:"match_pct" db:"match_pct"`
	Rationale     string    `json:"rationale" db:"rationale"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// ClampMatchPct bounds a raw percentage to [0,100].
func ClampMatchPct(pct int) int {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}
