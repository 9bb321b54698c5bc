package entities

import "time"

// ExtractedFacts holds structured facts pulled from a consult transcript.
type ExtractedFacts struct {
	Symptoms             []string `json:"symptoms"`
	Duration             string   `json:"duration"`
	MedicationsDiscussed []string `json:"medications_discussed"`
	AllergiesMentioned   []string `json:"allergies_mentioned"`
}

// DifferentialSuggestion is a lightweight diagnosis hint produced during
// consult analysis (distinct from the ranked DifferentialCandidate set).
type DifferentialSuggestion struct {
	Condition  string `json:"condition"`
	Likelihood string `json:"likelihood"`
	Reasoning  string `json:"reasoning"`
}

// ConsultInsights is the structured analysis of a consultation transcript.
type ConsultInsights struct {
	CleanTranscript         string                   `json:"clean_transcript"`
	SOAP                    SOAPNote                 `json:"soap"`
	ExtractedFacts          ExtractedFacts           `json:"extracted_facts"`
	FollowUpQuestions       []string                 `json:"follow_up_questions"`
	DifferentialSuggestions []DifferentialSuggestion `json:"differential_suggestions"`
	Disclaimer              string                   `json:"disclaimer"`
	RawResponse             string                   `json:"raw_response,omitempty"`
}

// ConsultSession represents one recorded doctor-patient consultation.
type ConsultSession struct {
	ID             string           `json:"id" db:"id"`
	PatientID      string           `json:"patient_id" db:"patient_id"`
	StartedAt      time.Time        `json:"started_at" db:"started_at"`
	EndedAt        *time.Time       `json:"ended_at,omitempty" db:"ended_at"`
	TranscriptText string           `json:"transcript_text" db:"transcript_text"`
	SOAPNote       *SOAPNote        `json:"soap_note,omitempty"`
	Insights       *ConsultInsights `json:"insights,omitempty"`
}
