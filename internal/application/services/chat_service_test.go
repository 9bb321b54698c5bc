package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatFixture(reply func(prompt string, maxTokens int) (string, error)) (*ChatService, *fakeIntakeRepo, *fakeLLM) {
	llm := &fakeLLM{reply: reply}
	intakes := &fakeIntakeRepo{}
	svc := NewChatService(
		newTestContextService(newFakePatientRepo(testPatient()), nil, nil, nil, nil),
		intakes,
		llm,
	)
	return svc, intakes, llm
}

func TestChatAnswerGroundsInRecord(t *testing.T) {
	var capturedPrompt string
	svc, _, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		capturedPrompt = prompt
		return "  The patient takes Metformin daily.  ", nil
	})

	reply, err := svc.Answer(context.Background(), "p-1", "What medications is she on?", nil)
	require.NoError(t, err)

	assert.Equal(t, "The patient takes Metformin daily.", reply)
	assert.Contains(t, capturedPrompt, "Asha Rao")
	assert.Contains(t, capturedPrompt, "Metformin")
	assert.Contains(t, capturedPrompt, "What medications is she on?")
}

func TestChatAnswerIncludesHistory(t *testing.T) {
	var capturedPrompt string
	svc, _, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		capturedPrompt = prompt
		return "Yes, as discussed.", nil
	})

	history := []ChatMessage{
		{Role: "user", Content: "Any allergies?"},
		{Role: "assistant", Content: "Penicillin allergy is on file."},
	}
	_, err := svc.Answer(context.Background(), "p-1", "Is amoxicillin safe then?", history)
	require.NoError(t, err)

	assert.Contains(t, capturedPrompt, "Doctor: Any allergies?")
	assert.Contains(t, capturedPrompt, "Assistant: Penicillin allergy is on file.")
	historyIdx := strings.Index(capturedPrompt, "Conversation So Far")
	questionIdx := strings.Index(capturedPrompt, "Is amoxicillin safe then?")
	assert.Greater(t, historyIdx, questionIdx)
}

func TestChatAnswerPropagatesProviderError(t *testing.T) {
	svc, _, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		return "", errors.New("quota exceeded")
	})

	_, err := svc.Answer(context.Background(), "p-1", "Anything?", nil)
	require.Error(t, err)
}

func TestChatSuggestionsParsesLines(t *testing.T) {
	svc, intakes, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		return "1. Any interaction between Metformin and Lisinopril?\n2) Is BP 150/95 concerning given diabetes?\n3- Safe antibiotics with penicillin allergy?\nExtra line that should be dropped", nil
	})
	require.NoError(t, intakes.Create(context.Background(), &entities.IntakeSummary{
		ID:             "s-1",
		PatientID:      "p-1",
		ChiefComplaint: "Headache",
		Findings:       []string{"BP 150/95"},
		CreatedAt:      time.Now(),
	}))

	suggestions, err := svc.Suggestions(context.Background(), "p-1")
	require.NoError(t, err)

	require.Len(t, suggestions, 3)
	assert.Equal(t, "Any interaction between Metformin and Lisinopril?", suggestions[0])
	assert.Equal(t, "Is BP 150/95 concerning given diabetes?", suggestions[1])
	assert.Equal(t, "Safe antibiotics with penicillin allergy?", suggestions[2])
}

func TestChatSuggestionsUsesIntakeChiefComplaint(t *testing.T) {
	var capturedPrompt string
	svc, intakes, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		capturedPrompt = prompt
		return "One question?", nil
	})
	require.NoError(t, intakes.Create(context.Background(), &entities.IntakeSummary{
		ID:             "s-1",
		PatientID:      "p-1",
		ChiefComplaint: "Severe migraine",
		CreatedAt:      time.Now(),
	}))

	suggestions, err := svc.Suggestions(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"One question?"}, suggestions)
	assert.Contains(t, capturedPrompt, "Severe migraine")
}

func TestChatSuggestionsDefaultChiefComplaint(t *testing.T) {
	var capturedPrompt string
	svc, _, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		capturedPrompt = prompt
		return "One question?", nil
	})

	_, err := svc.Suggestions(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Contains(t, capturedPrompt, "General checkup")
}

func TestChatSuggestionsFallbackOnProviderError(t *testing.T) {
	svc, _, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		return "", errors.New("provider down")
	})

	suggestions, err := svc.Suggestions(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, defaultSuggestions, suggestions)
}

func TestChatSuggestionsFallbackOnEmptyResponse(t *testing.T) {
	svc, _, _ := newChatFixture(func(prompt string, maxTokens int) (string, error) {
		return "\n\n   \n", nil
	})

	suggestions, err := svc.Suggestions(context.Background(), "p-1")
	require.NoError(t, err)
	assert.Equal(t, defaultSuggestions, suggestions)
}
