package evaluation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedLLM struct {
	reply func(prompt string) (string, error)
	calls int
}

func (l *scriptedLLM) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	l.calls++
	return l.reply(prompt)
}

func intakeDispatcher(chief, onset, severity, findings string) func(string) (string, error) {
	return func(prompt string) (string, error) {
		switch {
		case strings.Contains(prompt, "**Chief Complaint**"):
			return chief, nil
		case strings.Contains(prompt, "**Onset**"):
			return onset, nil
		case strings.Contains(prompt, "**Severity**"):
			return severity, nil
		case strings.Contains(prompt, "**Key Findings**"):
			return findings, nil
		}
		return "", errors.New("unexpected prompt")
	}
}

func exampleSet() []GoldenExample {
	return []GoldenExample{
		{
			ID:                "ex-1",
			PatientContext:    "Patient: Test, 40, male. Vitals: BP 150/95.",
			AppointmentReason: "Persistent headaches",
			Expected: IntakeExpected{
				ChiefComplaint: "Persistent headaches",
				Onset:          "Two weeks ago",
				Severity:       "Moderate",
				Findings:       []string{"Elevated BP 150/95"},
			},
			Difficulty: "easy",
		},
	}
}

func TestRunner_PerfectScores(t *testing.T) {
	llm := &scriptedLLM{reply: intakeDispatcher(
		`"Persistent headaches"`,
		"Two weeks ago",
		"Moderate",
		`["Elevated BP 150/95"]`,
	)}

	summary, results, err := NewRunner(llm).Run(context.Background(), exampleSet())
	require.NoError(t, err)
	require.Len(t, results, 1)

	res := results[0]
	assert.False(t, res.Failed)
	assert.Equal(t, 1.0, res.ChiefComplaint)
	assert.Equal(t, 1.0, res.Onset)
	assert.Equal(t, 1.0, res.Severity)
	assert.Equal(t, 1.0, res.FindingsF1)
	assert.Equal(t, 1.0, res.Overall)
	assert.Len(t, res.Traces, 4)

	assert.Equal(t, 1, summary.TotalExamples)
	assert.Equal(t, 0, summary.FailedExamples)
	assert.Equal(t, 1.0, summary.AvgOverall)
	require.Contains(t, summary.ByDifficulty, "easy")
	assert.Equal(t, 1, summary.ByDifficulty["easy"].Count)
	assert.Equal(t, 1.0, summary.ByDifficulty["easy"].AvgOverall)
}

func TestRunner_PartialScores(t *testing.T) {
	llm := &scriptedLLM{reply: intakeDispatcher(
		"Severe persistent headaches",
		"Recently",
		"moderate",
		`["Elevated BP 150/95", "Fatigue reported"]`,
	)}

	_, results, err := NewRunner(llm).Run(context.Background(), exampleSet())
	require.NoError(t, err)

	res := results[0]
	assert.Greater(t, res.ChiefComplaint, 0.0)
	assert.Less(t, res.ChiefComplaint, 1.0)
	assert.Equal(t, 0.0, res.Onset)
	assert.Equal(t, 1.0, res.Severity)
	assert.Greater(t, res.FindingsF1, 0.0)
	assert.Less(t, res.FindingsF1, 1.0)
}

func TestRunner_ChiefComplaintFailureMarksExampleFailed(t *testing.T) {
	llm := &scriptedLLM{reply: func(prompt string) (string, error) {
		return "", errors.New("model unavailable")
	}}

	summary, results, err := NewRunner(llm).Run(context.Background(), exampleSet())
	require.NoError(t, err)

	res := results[0]
	assert.True(t, res.Failed)
	assert.Equal(t, 1, llm.calls)
	require.Len(t, res.Traces, 1)
	assert.Equal(t, "chief_complaint", res.Traces[0].Field)
	assert.Contains(t, res.Traces[0].Error, "model unavailable")

	assert.Equal(t, 1, summary.FailedExamples)
	assert.Equal(t, 0.0, summary.AvgOverall)
	assert.Empty(t, summary.ByDifficulty)
}

func TestRunner_DownstreamFailureScoresZeroField(t *testing.T) {
	llm := &scriptedLLM{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "**Onset**") {
			return "", errors.New("timeout")
		}
		return intakeDispatcher(
			"Persistent headaches",
			"",
			"Moderate",
			`["Elevated BP 150/95"]`,
		)(prompt)
	}}

	summary, results, err := NewRunner(llm).Run(context.Background(), exampleSet())
	require.NoError(t, err)

	res := results[0]
	assert.False(t, res.Failed)
	assert.Equal(t, 0.0, res.Onset)
	assert.Equal(t, 1.0, res.ChiefComplaint)
	assert.Equal(t, 0, summary.FailedExamples)
}

func TestRunner_AveragesAcrossExamples(t *testing.T) {
	examples := append(exampleSet(), GoldenExample{
		ID:                "ex-2",
		PatientContext:    "Patient: Other, 55, female.",
		AppointmentReason: "Knee pain",
		Expected: IntakeExpected{
			ChiefComplaint: "Knee pain",
			Onset:          "One month",
			Severity:       "Mild",
			Findings:       []string{"Swollen left knee"},
		},
		Difficulty: "medium",
	})

	llm := &scriptedLLM{reply: func(prompt string) (string, error) {
		if strings.Contains(prompt, "Knee pain") || strings.Contains(prompt, "Other, 55") {
			return intakeDispatcher("Knee pain", "One month", "Mild", `["Swollen left knee"]`)(prompt)
		}
		return intakeDispatcher("Persistent headaches", "Two weeks ago", "Moderate", `["Elevated BP 150/95"]`)(prompt)
	}}

	summary, results, err := NewRunner(llm).Run(context.Background(), examples)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 2, summary.TotalExamples)
	assert.Equal(t, 1.0, summary.AvgOverall)
	assert.Len(t, summary.ByDifficulty, 2)
	assert.Equal(t, 1, summary.ByDifficulty["easy"].Count)
	assert.Equal(t, 1, summary.ByDifficulty["medium"].Count)
}
