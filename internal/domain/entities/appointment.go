package entities

import "time"

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	AppointmentStatusScheduled AppointmentStatus = "scheduled"
	AppointmentStatusSeen      AppointmentStatus = "seen"
	AppointmentStatusCompleted AppointmentStatus = "completed"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
)

// Appointment represents a scheduled appointment
type Appointment struct {
	ID        string            `json:"id" db:"id"`
	PatientID string            `json:"patient_id" db:"patient_id"`
	StartTime time.Time         `json:"start_time" db:"start_time"`
	Status    AppointmentStatus `json:"status" db:"status"`
	Reason    string            `json:"reason" db:"reason"`
	CreatedAt time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt time.Time         `json:"updated_at" db:"updated_at"`
}
