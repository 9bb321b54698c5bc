package services

import (
	"context"
	"strings"

	"github.com/parchi-ai/clinic-backend/internal/ai/parse"
	"github.com/parchi-ai/clinic-backend/internal/ai/prompts"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
	"github.com/rs/zerolog/log"
)

// defaultSuggestions is served when suggestion generation fails or returns
// nothing usable.
var defaultSuggestions = []string{
	"Are there any drug interactions?",
	"Summarize the recent findings",
	"What is the recommended treatment plan?",
}

// ChatMessage is one prior exchange turn passed back in with a follow-up
// question.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatService answers doctor questions grounded in a single patient's
// record and proposes contextual follow-up questions.
type ChatService struct {
	contexts *ContextService
	intakes  repositories.IntakeSummaryRepository
	llm      providers.LLMProvider
}

// NewChatService creates a new patient chat service
func NewChatService(contexts *ContextService, intakes repositories.IntakeSummaryRepository, llm providers.LLMProvider) *ChatService {
	return &ChatService{
		contexts: contexts,
		intakes:  intakes,
		llm:      llm,
	}
}

// Answer responds to a doctor's question about a patient, grounded in the
// patient's record block plus the running conversation history.
func (s *ChatService) Answer(ctx context.Context, patientID, question string, history []ChatMessage) (string, error) {
	bundle, err := s.contexts.Load(ctx, patientID)
	if err != nil {
		return "", err
	}

	prompt := prompts.BuildPatientQAPrompt(bundle.RecordBlock(), question)
	if len(history) > 0 {
		var lines []string
		for _, m := range history {
			speaker := "Doctor"
			if m.Role == "assistant" {
				speaker = "Assistant"
			}
			lines = append(lines, speaker+": "+m.Content)
		}
		prompt += "\n\n## Conversation So Far:\n" + strings.Join(lines, "\n")
	}

	reply, err := s.llm.Generate(ctx, prompt, 500)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(reply), nil
}

// Suggestions generates up to three patient-specific questions the doctor
// might ask next. Any failure degrades to the static defaults.
func (s *ChatService) Suggestions(ctx context.Context, patientID string) ([]string, error) {
	bundle, err := s.contexts.Load(ctx, patientID)
	if err != nil {
		return nil, err
	}
	p := bundle.Patient

	input := prompts.ChatSuggestionsInput{
		PatientName:    p.Name,
		PatientAge:     p.Age,
		PatientGender:  p.Gender,
		Conditions:     p.Conditions,
		Medications:    p.Medications,
		Allergies:      p.Allergies,
		Vitals:         VitalsSummary(p),
		ChiefComplaint: "General checkup",
	}

	intake, err := s.intakes.GetLatestByPatient(ctx, patientID)
	if err != nil && !apperrors.IsNotFound(err) {
		return nil, err
	}
	if intake != nil {
		if intake.ChiefComplaint != "" {
			input.ChiefComplaint = intake.ChiefComplaint
		}
		input.Findings = intake.Findings
	}

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	raw, err := s.llm.Generate(callCtx, prompts.BuildChatSuggestionsPrompt(input), 250)
	if err != nil {
		log.Warn().Str("patient_id", patientID).Err(err).Msg("Suggestion generation failed, using defaults")
		return defaultSuggestions, nil
	}

	var suggestions []string
	for _, line := range strings.Split(raw, "\n") {
		line = parse.StripNumbering(line)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 3 {
			break
		}
	}
	if len(suggestions) == 0 {
		return defaultSuggestions, nil
	}
	return suggestions, nil
}
