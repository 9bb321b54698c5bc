package evaluation

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "golden.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadGoldenExamples_Valid(t *testing.T) {
	path := writeTempFile(t, `[
		{
			"id": "ex-1",
			"patient_context": "Patient: Test, 40, male.",
			"appointment_reason": "Headache",
			"expected": {
				"chief_complaint": "Headache",
				"onset": "3 days ago",
				"severity": "Mild",
				"findings": ["BP 140/90"]
			},
			"difficulty": "easy"
		}
	]`)

	examples, err := LoadGoldenExamples(path)
	require.NoError(t, err)
	require.Len(t, examples, 1)
	assert.Equal(t, "ex-1", examples[0].ID)
	assert.Equal(t, "Headache", examples[0].Expected.ChiefComplaint)
	assert.Equal(t, []string{"BP 140/90"}, examples[0].Expected.Findings)
}

func TestLoadGoldenExamples_MissingFile(t *testing.T) {
	_, err := LoadGoldenExamples(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read")
}

func TestLoadGoldenExamples_InvalidJSON(t *testing.T) {
	path := writeTempFile(t, `{not valid json`)
	_, err := LoadGoldenExamples(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
}

func validExample(id string) GoldenExample {
	return GoldenExample{
		ID:             id,
		PatientContext: "Patient: Test, 40, male.",
		Expected:       IntakeExpected{ChiefComplaint: "Headache"},
		Difficulty:     "easy",
	}
}

func TestValidateGoldenExamples_Valid(t *testing.T) {
	assert.NoError(t, ValidateGoldenExamples([]GoldenExample{validExample("a"), validExample("b")}))
}

func TestValidateGoldenExamples_MissingID(t *testing.T) {
	ex := validExample("")
	err := ValidateGoldenExamples([]GoldenExample{ex})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing id")
}

func TestValidateGoldenExamples_DuplicateID(t *testing.T) {
	err := ValidateGoldenExamples([]GoldenExample{validExample("a"), validExample("a")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate id")
}

func TestValidateGoldenExamples_MissingPatientContext(t *testing.T) {
	ex := validExample("a")
	ex.PatientContext = ""
	err := ValidateGoldenExamples([]GoldenExample{ex})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing patient context")
}

func TestValidateGoldenExamples_MissingChiefComplaint(t *testing.T) {
	ex := validExample("a")
	ex.Expected.ChiefComplaint = ""
	err := ValidateGoldenExamples([]GoldenExample{ex})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing expected chief complaint")
}

func TestValidateGoldenExamples_InvalidDifficulty(t *testing.T) {
	ex := validExample("a")
	ex.Difficulty = "impossible"
	err := ValidateGoldenExamples([]GoldenExample{ex})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid difficulty")
}
