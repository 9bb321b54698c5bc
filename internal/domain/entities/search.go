package entities

// SearchMatch is one ranked result from the smart patient search.
type SearchMatch struct {
	PatientID       string   `json:"patient_id"`
	PatientName     string   `json:"patient_name"`
	MatchedSnippets []string `json:"matched_snippets"`
}
