package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parchi-ai/clinic-backend/internal/ai/parse"
	"github.com/parchi-ai/clinic-backend/internal/ai/prompts"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/rs/zerolog/log"
)

// IntakeSummaryService generates structured intake summaries: one sequential
// chief-complaint call, then four parallel field extractions, persisted as a
// new immutable row. Progress is published to the event bus so SSE clients
// can follow along.
type IntakeSummaryService struct {
	contexts     *ContextService
	appointments repositories.AppointmentRepository
	intakes      repositories.IntakeSummaryRepository
	llm          providers.LLMProvider
	events       providers.EventBus
}

// NewIntakeSummaryService creates a new intake summary service
func NewIntakeSummaryService(
	contexts *ContextService,
	appointments repositories.AppointmentRepository,
	intakes repositories.IntakeSummaryRepository,
	llm providers.LLMProvider,
	events providers.EventBus,
) *IntakeSummaryService {
	return &IntakeSummaryService{
		contexts:     contexts,
		appointments: appointments,
		intakes:      intakes,
		llm:          llm,
		events:       events,
	}
}

// Generate builds and persists a new intake summary for the patient. Field
// extraction branches degrade independently: a failed branch leaves its
// field empty rather than failing the generation.
func (s *IntakeSummaryService) Generate(ctx context.Context, patientID string) (*entities.IntakeSummary, error) {
	s.publish(ctx, patientID, "started", "Gathering patient records", nil)

	bundle, err := s.contexts.Load(ctx, patientID)
	if err != nil {
		s.publish(ctx, patientID, "error", "Failed to load patient records", nil)
		return nil, err
	}
	patientContext := bundle.PromptContext()

	reason := s.appointmentReason(ctx, patientID)

	s.publish(ctx, patientID, "progress", "Identifying chief complaint", nil)

	chiefComplaint := s.generateField(ctx, prompts.BuildIntakeChiefComplaintPrompt(reason, patientContext), 100, "chief_complaint")
	if chiefComplaint == "" {
		chiefComplaint = reason
	}

	s.publish(ctx, patientID, "progress", "Extracting onset, severity, findings, and context", map[string]any{
		"chief_complaint": chiefComplaint,
	})

	summary := &entities.IntakeSummary{
		ID:             uuid.NewString(),
		PatientID:      patientID,
		ChiefComplaint: chiefComplaint,
		Findings:       []string{},
		CreatedAt:      time.Now(),
	}

	var wg sync.WaitGroup
	wg.Add(4)
	go func() {
		defer wg.Done()
		summary.Onset = s.generateField(ctx, prompts.BuildIntakeOnsetPrompt(chiefComplaint, patientContext), 50, "onset")
	}()
	go func() {
		defer wg.Done()
		summary.Severity = s.generateField(ctx, prompts.BuildIntakeSeverityPrompt(chiefComplaint, patientContext), 50, "severity")
	}()
	go func() {
		defer wg.Done()
		summary.Findings = s.generateFindings(ctx, chiefComplaint, patientContext)
	}()
	go func() {
		defer wg.Done()
		summary.Context = s.generateField(ctx, prompts.BuildIntakeContextPrompt(chiefComplaint, patientContext), 400, "context")
	}()
	wg.Wait()

	if err := s.intakes.Create(ctx, summary); err != nil {
		s.publish(ctx, patientID, "error", "Failed to save intake summary", nil)
		return nil, err
	}

	s.publish(ctx, patientID, "completed", "Intake summary ready", map[string]any{
		"summary_id": summary.ID,
	})

	return summary, nil
}

// GetLatest returns the most recent intake summary for a patient.
func (s *IntakeSummaryService) GetLatest(ctx context.Context, patientID string) (*entities.IntakeSummary, error) {
	return s.intakes.GetLatestByPatient(ctx, patientID)
}

// appointmentReason resolves the visit reason from the patient's first
// scheduled appointment, falling back to a generic follow-up.
func (s *IntakeSummaryService) appointmentReason(ctx context.Context, patientID string) string {
	appointments, err := s.appointments.ListByPatient(ctx, patientID)
	if err != nil {
		log.Warn().Str("patient_id", patientID).Err(err).Msg("Could not list appointments for intake reason")
		return "Follow-up visit"
	}
	for _, a := range appointments {
		if a.Status == entities.AppointmentStatusScheduled {
			return orDefault(a.Reason, "General consultation")
		}
	}
	return "Follow-up visit"
}

func (s *IntakeSummaryService) generateField(ctx context.Context, prompt string, maxTokens int, field string) string {
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	raw, err := s.llm.Generate(callCtx, prompt, maxTokens)
	if err != nil {
		log.Warn().Str("field", field).Err(err).Msg("Intake field generation failed")
		return ""
	}
	return parse.StripQuotes(raw)
}

// generateFindings parses the findings response as a JSON list. A non-empty
// response that does not parse becomes a single-element list; an empty or
// failed response becomes an empty list.
func (s *IntakeSummaryService) generateFindings(ctx context.Context, chiefComplaint, patientContext string) []string {
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	raw, err := s.llm.Generate(callCtx, prompts.BuildIntakeFindingsPrompt(chiefComplaint, patientContext), 300)
	if err != nil {
		log.Warn().Err(err).Msg("Intake findings generation failed")
		return []string{}
	}

	findings := parse.StringList(raw)
	if len(findings) == 0 {
		if text := parse.StripQuotes(raw); text != "" {
			return []string{text}
		}
		return []string{}
	}

	for i, f := range findings {
		findings[i] = parse.StripQuotes(f)
	}
	return findings
}

func (s *IntakeSummaryService) publish(ctx context.Context, patientID, eventType, message string, data map[string]any) {
	event := &entities.ProgressEvent{
		Type:      eventType,
		Message:   message,
		Timestamp: time.Now(),
		Data:      data,
	}
	if err := s.events.Publish(ctx, providers.GetIntakeChannel(patientID), event); err != nil {
		log.Warn().Str("patient_id", patientID).Err(err).Msg("Failed to publish intake progress event")
	}
}
