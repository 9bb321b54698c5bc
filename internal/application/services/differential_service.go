package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/parchi-ai/clinic-backend/internal/ai/parse"
	"github.com/parchi-ai/clinic-backend/internal/ai/prompts"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// llmCallTimeout bounds each individual model call in a fan-out.
	llmCallTimeout = 15 * time.Second

	maxDifferentialCandidates = 5

	defaultMatchPct  = 50
	defaultRationale = "Analysis pending."

	fallbackCandidate = "Condition requiring further evaluation"
)

// DifferentialService generates the ranked differential diagnosis set for a
// patient: one candidate-generation call followed by a parallel scoring
// fan-out, then a replace-all persist.
type DifferentialService struct {
	patients      repositories.PatientRepository
	appointments  repositories.AppointmentRepository
	intakes       repositories.IntakeSummaryRepository
	consults      repositories.ConsultRepository
	dumps         repositories.ClinicalDumpRepository
	differentials repositories.DifferentialRepository
	llm           providers.LLMProvider
}

// NewDifferentialService creates a new differential diagnosis service
func NewDifferentialService(
	patients repositories.PatientRepository,
	appointments repositories.AppointmentRepository,
	intakes repositories.IntakeSummaryRepository,
	consults repositories.ConsultRepository,
	dumps repositories.ClinicalDumpRepository,
	differentials repositories.DifferentialRepository,
	llm providers.LLMProvider,
) *DifferentialService {
	return &DifferentialService{
		patients:      patients,
		appointments:  appointments,
		intakes:       intakes,
		consults:      consults,
		dumps:         dumps,
		differentials: differentials,
		llm:           llm,
	}
}

// Generate produces, ranks, and persists the differential diagnosis set for
// a patient. appointmentID optionally scopes the stored set. The returned
// slice is ordered by match percentage, highest first.
func (s *DifferentialService) Generate(ctx context.Context, patientID, appointmentID string) ([]*entities.DifferentialCandidate, error) {
	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	input, err := s.buildInput(ctx, patient)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("patient_id", patientID).
		Str("appointment_id", appointmentID).
		Str("chief_complaint", input.ChiefComplaint).
		Msg("Generating differential candidates")

	candidates, err := s.generateCandidates(ctx, input)
	if err != nil {
		return nil, err
	}

	scored := s.scoreCandidates(ctx, candidates, input)

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].MatchPct > scored[j].MatchPct
	})

	now := time.Now()
	rows := make([]*entities.DifferentialCandidate, 0, len(scored))
	for _, r := range scored {
		rows = append(rows, &entities.DifferentialCandidate{
			ID:            uuid.NewString(),
			PatientID:     patientID,
			AppointmentID: appointmentID,
			ConditionName: r.ConditionName,
			MatchPct:      r.MatchPct,
			Rationale:     r.Rationale,
			CreatedAt:     now,
		})
	}

	if err := s.differentials.Replace(ctx, patientID, appointmentID, rows); err != nil {
		return nil, err
	}

	return rows, nil
}

// buildInput assembles the shared presentation block: chief complaint with
// its fallback chain, history, and enriched findings.
func (s *DifferentialService) buildInput(ctx context.Context, patient *entities.Patient) (prompts.DifferentialInput, error) {
	chiefComplaint := "Not recorded"
	var intakeFindings []string

	intake, err := s.intakes.GetLatestByPatient(ctx, patient.ID)
	if err != nil && !apperrors.IsNotFound(err) {
		return prompts.DifferentialInput{}, err
	}
	if intake != nil {
		if intake.ChiefComplaint != "" {
			chiefComplaint = intake.ChiefComplaint
		}
		intakeFindings = intake.Findings
	}

	if chiefComplaint == "Not recorded" {
		appointments, err := s.appointments.ListByPatient(ctx, patient.ID)
		if err != nil {
			return prompts.DifferentialInput{}, err
		}
		if len(appointments) > 0 && appointments[0].Reason != "" {
			chiefComplaint = appointments[0].Reason
		}
	}

	history := fmt.Sprintf("Conditions: %s\nMedications: %s",
		joinList(patient.Conditions), joinList(patient.Medications))

	findings := strings.Join(intakeFindings, "\n")

	consults, err := s.consults.ListByPatient(ctx, patient.ID)
	if err != nil {
		return prompts.DifferentialInput{}, err
	}
	for _, c := range limitConsults(consults, 3) {
		if c.Insights == nil {
			continue
		}
		facts := c.Insights.ExtractedFacts
		if len(facts.Symptoms) > 0 {
			findings += "\nConsult-reported symptoms: " + strings.Join(facts.Symptoms, ", ")
		}
		if facts.Duration != "" {
			findings += "\nDuration: " + facts.Duration
		}
	}

	dumps, err := s.dumps.ListByPatient(ctx, patient.ID)
	if err != nil {
		return prompts.DifferentialInput{}, err
	}
	for _, d := range limitDumps(dumps, 3) {
		if text := d.BestText(); text != "" {
			findings += "\nClinical dump: " + truncate(text, 300)
		}
	}

	return prompts.DifferentialInput{
		PatientName:    patient.Name,
		PatientAge:     patient.Age,
		PatientGender:  patient.Gender,
		ChiefComplaint: chiefComplaint,
		History:        history,
		Findings:       findings,
	}, nil
}

// generateCandidates makes the single candidate-generation call. Parse
// failures degrade through quoted-string extraction down to a single
// placeholder; the list is capped at five.
func (s *DifferentialService) generateCandidates(ctx context.Context, input prompts.DifferentialInput) ([]string, error) {
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	raw, err := s.llm.Generate(callCtx, prompts.BuildDifferentialCandidatesPrompt(input), 300)
	if err != nil {
		return nil, err
	}

	candidates := parse.StringList(raw)
	if len(candidates) == 0 {
		candidates = parse.QuotedStrings(raw)
	}
	if len(candidates) == 0 {
		log.Warn().Msg("Could not parse differential candidates, using placeholder")
		candidates = []string{fallbackCandidate}
	}
	if len(candidates) > maxDifferentialCandidates {
		candidates = candidates[:maxDifferentialCandidates]
	}

	log.Info().Strs("candidates", candidates).Msg("Parsed differential candidates")
	return candidates, nil
}

type scoredCandidate struct {
	ConditionName string
	MatchPct      int
	Rationale     string
}

// scoreCandidates scores every candidate concurrently. A failed or
// unparseable branch keeps its documented defaults and never affects its
// siblings.
func (s *DifferentialService) scoreCandidates(ctx context.Context, candidates []string, input prompts.DifferentialInput) []scoredCandidate {
	scored := make([]scoredCandidate, len(candidates))

	var wg sync.WaitGroup
	for i, condition := range candidates {
		wg.Add(1)
		go func(i int, condition string) {
			defer wg.Done()
			scored[i] = s.scoreCondition(ctx, condition, input)
		}(i, condition)
	}
	wg.Wait()

	return scored
}

func (s *DifferentialService) scoreCondition(ctx context.Context, condition string, input prompts.DifferentialInput) scoredCandidate {
	result := scoredCandidate{
		ConditionName: condition,
		MatchPct:      defaultMatchPct,
		Rationale:     defaultRationale,
	}

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	raw, err := s.llm.Generate(callCtx, prompts.BuildDifferentialScoringPrompt(condition, input), 250)
	if err != nil {
		log.Warn().Str("condition", condition).Err(err).Msg("Scoring call failed, keeping defaults")
		return result
	}

	var payload struct {
		MatchPct  int    `json:"match_pct"`
		Reasoning string `json:"reasoning"`
	}
	if parse.Object(raw, &payload) {
		result.MatchPct = payload.MatchPct
		if payload.Reasoning != "" {
			result.Rationale = payload.Reasoning
		}
	} else {
		if pct, ok := parse.Percentage(raw); ok {
			result.MatchPct = pct
		}
		if reasoning := parse.QuotedReasoning(raw); reasoning != "" {
			result.Rationale = reasoning
		}
	}

	result.MatchPct = entities.ClampMatchPct(result.MatchPct)
	return result
}
