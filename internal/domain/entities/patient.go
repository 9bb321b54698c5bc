package entities

import "time"

// Vitals holds the most recent vital signs recorded for a patient.
type Vitals struct {
	BPSystolic   int       `json:"bp_systolic" db:"bp_systolic"`
	BPDiastolic  int       `json:"bp_diastolic" db:"bp_diastolic"`
	SpO2         int       `json:"spo2" db:"spo2"`
	HeartRate    int       `json:"heart_rate" db:"heart_rate"`
	TemperatureF float64   `json:"temperature_f" db:"temperature_f"`
	RecordedAt   time.Time `json:"recorded_at" db:"recorded_at"`
}

// Patient represents a patient record
type Patient struct {
	ID          string   `json:"id" db:"id"`
	ClinicID    string   `json:"clinic_id" db:"clinic_id"`
	Name        string   `json:"name" db:"name"`
	Age         int      `json:"age" db:"age"`
	Gender      string   `json:"gender" db:"gender"`
	Phone       string   `json:"phone" db:"phone"`
	Email       string   `json:"email" db:"email"`
	Address     string   `json:"address" db:"address"`
	HeightCm    int      `json:"height_cm" db:"height_cm"`
	WeightKg    int      `json:"weight_kg" db:"weight_kg"`
	Allergies   []string `json:"allergies" db:"allergies"`
	Medications []string `json:"medications" db:"medications"`
	Conditions  []string `json:"conditions" db:"conditions"`
	Vitals      *Vitals  `json:"vitals,omitempty"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
