package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
)

// LoadGoldenExamples reads and parses a golden example set from a JSON file.
func LoadGoldenExamples(path string) ([]GoldenExample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden examples file: %w", err)
	}

	var examples []GoldenExample
	if err := json.Unmarshal(data, &examples); err != nil {
		return nil, fmt.Errorf("failed to parse golden examples: %w", err)
	}

	return examples, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateGoldenExamples checks that all golden examples have required
// fields and valid values.
func ValidateGoldenExamples(examples []GoldenExample) error {
	seen := make(map[string]struct{}, len(examples))

	for i, ex := range examples {
		if ex.ID == "" {
			return fmt.Errorf("example at index %d: missing id", i)
		}
		if _, dup := seen[ex.ID]; dup {
			return fmt.Errorf("example at index %d: duplicate id %q", i, ex.ID)
		}
		seen[ex.ID] = struct{}{}

		if ex.PatientContext == "" {
			return fmt.Errorf("example %q: missing patient context", ex.ID)
		}
		if ex.Expected.ChiefComplaint == "" {
			return fmt.Errorf("example %q: missing expected chief complaint", ex.ID)
		}
		if !validDifficulties[ex.Difficulty] {
			return fmt.Errorf("example %q: invalid difficulty %q (must be easy/medium/hard)", ex.ID, ex.Difficulty)
		}
	}

	return nil
}
