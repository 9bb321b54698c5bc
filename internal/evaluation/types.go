package evaluation

import "time"

// GoldenExample is one labeled patient case with the expected intake
// summary fields.
type GoldenExample struct {
	ID                string         `json:"id"`
	PatientContext    string         `json:"patient_context"`
	AppointmentReason string         `json:"appointment_reason"`
	Expected          IntakeExpected `json:"expected"`
	Difficulty        string         `json:"difficulty"` // easy, medium, hard
}

// IntakeExpected holds the reference intake summary for a golden example.
type IntakeExpected struct {
	ChiefComplaint string   `json:"chief_complaint"`
	Onset          string   `json:"onset"`
	Severity       string   `json:"severity"`
	Findings       []string `json:"findings"`
}

// ExecutionTrace captures one model call end to end for inspection.
type ExecutionTrace struct {
	Field     string `json:"field"`
	Prompt    string `json:"prompt"`
	RawOutput string `json:"raw_output"`
	Parsed    string `json:"parsed"`
	Error     string `json:"error,omitempty"`
}

// EvalResult holds the evaluation outcome for a single golden example.
type EvalResult struct {
	ExampleID      string
	Difficulty     string
	ChiefComplaint float64
	Onset          float64
	Severity       float64
	FindingsF1     float64
	Overall        float64
	Latency        time.Duration
	Traces         []ExecutionTrace
	Failed         bool
}

// EvalSummary holds aggregate metrics across all golden examples.
type EvalSummary struct {
	TotalExamples     int
	FailedExamples    int
	AvgChiefComplaint float64
	AvgOnset          float64
	AvgSeverity       float64
	AvgFindingsF1     float64
	AvgOverall        float64
	AvgLatency        time.Duration
	ByDifficulty      map[string]*DifficultySummary
}

// DifficultySummary holds metrics grouped by example difficulty.
type DifficultySummary struct {
	Count      int
	AvgOverall float64
}
