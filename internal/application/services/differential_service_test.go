package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDifferentialFixture(reply func(prompt string, maxTokens int) (string, error)) (*DifferentialService, *fakeDifferentialRepo, *fakeLLM) {
	llm := &fakeLLM{reply: reply}
	differentials := &fakeDifferentialRepo{}
	svc := NewDifferentialService(
		newFakePatientRepo(testPatient()),
		&fakeAppointmentRepo{},
		&fakeIntakeRepo{},
		newFakeConsultRepo(),
		&fakeDumpRepo{},
		differentials,
		llm,
	)
	return svc, differentials, llm
}

func scoringResponse(pct int, reasoning string) string {
	return fmt.Sprintf(`{"condition": "x", "match_pct": %d, "reasoning": "%s"}`, pct, reasoning)
}

func TestDifferentialGenerateRanksAndPersists(t *testing.T) {
	scores := map[string]int{
		"Migraine":         88,
		"Tension Headache": 60,
		"Sinusitis":        35,
	}
	svc, differentials, _ := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			return `["Migraine", "Tension Headache", "Sinusitis"]`, nil
		}
		for condition, pct := range scores {
			if strings.Contains(prompt, `"`+condition+`"`) {
				return scoringResponse(pct, "Fits the presentation."), nil
			}
		}
		return "", errors.New("unexpected prompt")
	})

	result, err := svc.Generate(context.Background(), "p-1", "a-1")
	require.NoError(t, err)
	require.Len(t, result, 3)

	assert.Equal(t, "Migraine", result[0].ConditionName)
	assert.Equal(t, 88, result[0].MatchPct)
	assert.Equal(t, "Tension Headache", result[1].ConditionName)
	assert.Equal(t, "Sinusitis", result[2].ConditionName)
	assert.Equal(t, "Fits the presentation.", result[0].Rationale)

	assert.Equal(t, 1, differentials.replaceCalls)
	assert.Equal(t, result, differentials.current)
	for _, c := range result {
		assert.Equal(t, "p-1", c.PatientID)
		assert.Equal(t, "a-1", c.AppointmentID)
		assert.NotEmpty(t, c.ID)
	}
}

func TestDifferentialGenerateClampsScores(t *testing.T) {
	svc, _, _ := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			return `["Overshoot", "Undershoot"]`, nil
		}
		if strings.Contains(prompt, `"Overshoot"`) {
			return scoringResponse(150, "Too confident."), nil
		}
		return scoringResponse(-5, "Negative."), nil
	})

	result, err := svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, 100, result[0].MatchPct)
	assert.Equal(t, 0, result[1].MatchPct)
}

func TestDifferentialGenerateTruncatesCandidateList(t *testing.T) {
	svc, _, llm := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			return `["C1", "C2", "C3", "C4", "C5", "C6", "C7", "C8"]`, nil
		}
		return scoringResponse(50, "Even."), nil
	})

	result, err := svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)
	assert.Len(t, result, 5)

	// one candidate call plus one scoring call per kept candidate
	assert.Equal(t, 6, llm.callCount())
}

func TestDifferentialGenerateIsolatesScoringFailure(t *testing.T) {
	svc, _, _ := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			return `["Working", "Broken"]`, nil
		}
		if strings.Contains(prompt, `"Broken"`) {
			return "", errors.New("provider blew up")
		}
		return scoringResponse(90, "Strong fit."), nil
	})

	result, err := svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)
	require.Len(t, result, 2)

	assert.Equal(t, "Working", result[0].ConditionName)
	assert.Equal(t, 90, result[0].MatchPct)

	assert.Equal(t, "Broken", result[1].ConditionName)
	assert.Equal(t, 50, result[1].MatchPct)
	assert.Equal(t, "Analysis pending.", result[1].Rationale)
}

func TestDifferentialGenerateRegexFallbackScoring(t *testing.T) {
	svc, _, _ := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			return `["Only One"]`, nil
		}
		return `not json at all, but "match_pct": 72 and "reasoning": "Partial evidence found."`, nil
	})

	result, err := svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)
	require.Len(t, result, 1)

	assert.Equal(t, 72, result[0].MatchPct)
	assert.Equal(t, "Partial evidence found.", result[0].Rationale)
}

func TestDifferentialGeneratePlaceholderOnUnparseableCandidates(t *testing.T) {
	svc, _, _ := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			return "no structure here whatsoever", nil
		}
		return scoringResponse(50, "Pending workup."), nil
	})

	result, err := svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Condition requiring further evaluation", result[0].ConditionName)
}

func TestDifferentialGenerateFailsOnCandidateCallError(t *testing.T) {
	svc, differentials, _ := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		return "", errors.New("upstream down")
	})

	_, err := svc.Generate(context.Background(), "p-1", "")
	require.Error(t, err)
	assert.Equal(t, 0, differentials.replaceCalls)
}

func TestDifferentialGenerateUnknownPatient(t *testing.T) {
	svc, _, llm := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		return "", errors.New("should not be called")
	})

	_, err := svc.Generate(context.Background(), "missing", "")
	require.Error(t, err)
	assert.Equal(t, 0, llm.callCount())
}

func TestDifferentialGenerateReplacesOnRegenerate(t *testing.T) {
	svc, differentials, _ := newDifferentialFixture(func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			return `["Stable Candidate"]`, nil
		}
		return scoringResponse(40, "Consistent."), nil
	})

	_, err := svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)
	_, err = svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)

	assert.Equal(t, 2, differentials.replaceCalls)
	assert.Len(t, differentials.current, 1)
}

func TestDifferentialChiefComplaintFallsBackToAppointmentReason(t *testing.T) {
	var candidatesPrompt string
	llm := &fakeLLM{reply: func(prompt string, maxTokens int) (string, error) {
		if maxTokens == 300 {
			candidatesPrompt = prompt
			return `["Anything"]`, nil
		}
		return scoringResponse(50, "Pending."), nil
	}}

	appointments := &fakeAppointmentRepo{}
	require.NoError(t, appointments.Create(context.Background(), apptForPatient("p-1", "Recurring chest pain")))

	svc := NewDifferentialService(
		newFakePatientRepo(testPatient()),
		appointments,
		&fakeIntakeRepo{},
		newFakeConsultRepo(),
		&fakeDumpRepo{},
		&fakeDifferentialRepo{},
		llm,
	)

	_, err := svc.Generate(context.Background(), "p-1", "")
	require.NoError(t, err)
	assert.Contains(t, candidatesPrompt, "Recurring chest pain")
}
