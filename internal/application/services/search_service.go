package services

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/parchi-ai/clinic-backend/internal/ai/parse"
	"github.com/parchi-ai/clinic-backend/internal/ai/prompts"
	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
	"github.com/rs/zerolog/log"
)

const maxSearchContextPatients = 20

// SearchService answers natural-language queries over the clinic's patient
// roster. Records are loaded in four bulk reads, rendered into per-patient
// context blocks, and the model picks candidates before a per-candidate
// reasoning fan-out.
type SearchService struct {
	patients     repositories.PatientRepository
	appointments repositories.AppointmentRepository
	visits       repositories.VisitRepository
	documents    repositories.DocumentRepository
	llm          providers.LLMProvider
}

// NewSearchService creates a new smart search service
func NewSearchService(
	patients repositories.PatientRepository,
	appointments repositories.AppointmentRepository,
	visits repositories.VisitRepository,
	documents repositories.DocumentRepository,
	llm providers.LLMProvider,
) *SearchService {
	return &SearchService{
		patients:     patients,
		appointments: appointments,
		visits:       visits,
		documents:    documents,
		llm:          llm,
	}
}

// patientContext is one patient's roster entry plus the records grouped
// onto it for the search prompt.
type patientContext struct {
	patient      *entities.Patient
	appointments []*entities.Appointment
	lastVisit    *entities.Visit
	documents    []*entities.Document
}

// Search returns the patients matching the query, each with a short model
// reasoning snippet. An unparseable candidate response falls back to
// substring name matching.
func (s *SearchService) Search(ctx context.Context, clinicID, query string) ([]*entities.SearchMatch, error) {
	contexts, err := s.loadContexts(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	if len(contexts) == 0 {
		return []*entities.SearchMatch{}, nil
	}

	blocks := contexts
	if len(blocks) > maxSearchContextPatients {
		blocks = blocks[:maxSearchContextPatients]
	}

	var summaries []string
	for _, pc := range blocks {
		summaries = append(summaries, pc.render())
	}

	candidates := s.selectCandidates(ctx, query, strings.Join(summaries, "\n\n"), contexts)

	matches := make([]*entities.SearchMatch, len(candidates))
	var wg sync.WaitGroup
	for i, pc := range candidates {
		wg.Add(1)
		go func(i int, pc *patientContext) {
			defer wg.Done()
			matches[i] = &entities.SearchMatch{
				PatientID:       pc.patient.ID,
				PatientName:     pc.patient.Name,
				MatchedSnippets: s.reasonAbout(ctx, pc, query),
			}
		}(i, pc)
	}
	wg.Wait()

	return matches, nil
}

// loadContexts performs the four bulk reads and groups the results onto
// each patient.
func (s *SearchService) loadContexts(ctx context.Context, clinicID string) ([]*patientContext, error) {
	patients, err := s.patients.List(ctx, clinicID)
	if err != nil {
		return nil, err
	}
	appointments, err := s.appointments.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	documents, err := s.documents.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	byPatient := make(map[string]*patientContext, len(patients))
	contexts := make([]*patientContext, 0, len(patients))
	for _, p := range patients {
		pc := &patientContext{patient: p}
		byPatient[p.ID] = pc
		contexts = append(contexts, pc)
	}

	for _, a := range appointments {
		if pc, ok := byPatient[a.PatientID]; ok && len(pc.appointments) < 3 {
			pc.appointments = append(pc.appointments, a)
		}
	}
	for _, v := range visits {
		if pc, ok := byPatient[v.PatientID]; ok && pc.lastVisit == nil {
			pc.lastVisit = v
		}
	}
	for _, d := range documents {
		if pc, ok := byPatient[d.PatientID]; ok && len(pc.documents) < 3 {
			pc.documents = append(pc.documents, d)
		}
	}

	return contexts, nil
}

func (pc *patientContext) render() string {
	p := pc.patient

	var apptLines []string
	for _, a := range pc.appointments {
		apptLines = append(apptLines, fmt.Sprintf("%s (%s): %s",
			a.StartTime.Format("2006-01-02"), a.Status, orDefault(a.Reason, "no reason recorded")))
	}

	lastVisit := "None"
	if pc.lastVisit != nil {
		lastVisit = truncate(pc.lastVisit.BestSummary(), 200)
	}

	var titles []string
	for _, d := range pc.documents {
		titles = append(titles, d.Title)
	}

	return fmt.Sprintf(`Patient ID: %s
Name: %s
Age: %d, Gender: %s
Conditions: %s
Medications: %s
Allergies: %s
Recent Appointments: %s
Last Visit: %s
Documents: %s`,
		p.ID, p.Name, p.Age, p.Gender,
		joinList(p.Conditions), joinList(p.Medications), joinList(p.Allergies),
		joinOrPlaceholder(apptLines, "None"),
		lastVisit,
		joinOrPlaceholder(titles, "None"))
}

// selectCandidates asks the model which patient IDs match the query. On a
// failed call or unparseable response it falls back to case-insensitive
// substring matching on patient names.
func (s *SearchService) selectCandidates(ctx context.Context, query, summaries string, contexts []*patientContext) []*patientContext {
	byID := make(map[string]*patientContext, len(contexts))
	for _, pc := range contexts {
		byID[pc.patient.ID] = pc
	}

	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	raw, err := s.llm.Generate(callCtx, prompts.BuildSearchCandidatesPrompt(query, summaries), 500)
	if err != nil {
		log.Warn().Err(err).Msg("Search candidate call failed, falling back to name match")
		return s.nameMatch(query, contexts)
	}

	ids := parse.StringList(raw)
	var selected []*patientContext
	for _, id := range ids {
		if pc, ok := byID[parse.StripQuotes(id)]; ok {
			selected = append(selected, pc)
		}
	}
	if len(selected) == 0 {
		return s.nameMatch(query, contexts)
	}
	return selected
}

func (s *SearchService) nameMatch(query string, contexts []*patientContext) []*patientContext {
	needle := strings.ToLower(strings.TrimSpace(query))
	var matched []*patientContext
	for _, pc := range contexts {
		if needle != "" && strings.Contains(strings.ToLower(pc.patient.Name), needle) {
			matched = append(matched, pc)
		}
	}
	return matched
}

// reasonAbout generates a one-line explanation of why the patient matches.
// A failed call yields no snippet rather than failing the search.
func (s *SearchService) reasonAbout(ctx context.Context, pc *patientContext, query string) []string {
	callCtx, cancel := context.WithTimeout(ctx, llmCallTimeout)
	defer cancel()

	raw, err := s.llm.Generate(callCtx, prompts.BuildSearchReasoningPrompt(pc.render(), query), 50)
	if err != nil {
		log.Warn().Str("patient_id", pc.patient.ID).Err(err).Msg("Search reasoning call failed")
		return []string{}
	}
	if snippet := parse.StripQuotes(raw); snippet != "" {
		return []string{snippet}
	}
	return []string{}
}
