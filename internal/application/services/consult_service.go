package services

import (
	"context"
	"strings"
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

const analysisDisclaimer = "These are AI-generated suggestions for reference only. Clinical judgment is required."

// ConsultService manages recorded consultation sessions: lifecycle,
// transcription of uploaded audio, clinical dump capture, and post-consult
// transcript analysis.
type ConsultService struct {
	patients repositories.PatientRepository
	consults repositories.ConsultRepository
	dumps    repositories.ClinicalDumpRepository
	reports  repositories.ReportInsightRepository
	llm      providers.LLMProvider
	speech   providers.SpeechToTextProvider
}

// NewConsultService creates a new consult session service
func NewConsultService(
	patients repositories.PatientRepository,
	consults repositories.ConsultRepository,
	dumps repositories.ClinicalDumpRepository,
	reports repositories.ReportInsightRepository,
	llm providers.LLMProvider,
	speech providers.SpeechToTextProvider,
) *ConsultService {
	return &ConsultService{
		patients: patients,
		consults: consults,
		dumps:    dumps,
		reports:  reports,
		llm:      llm,
		speech:   speech,
	}
}

// Start opens a new consult session for a patient.
func (s *ConsultService) Start(ctx context.Context, patientID string) (*entities.ConsultSession, error) {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return nil, err
	}

	session := &entities.ConsultSession{
		ID:        uuid.NewString(),
		PatientID: patientID,
		StartedAt: time.Now(),
	}
	if err := s.consults.Create(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Get returns a consult session by id.
func (s *ConsultService) Get(ctx context.Context, sessionID string) (*entities.ConsultSession, error) {
	return s.consults.GetByID(ctx, sessionID)
}

// OpenDump creates an empty clinical dump row for a live consult session.
// The live transcription route creates it up front so the client knows the
// dump id before any audio flows.
func (s *ConsultService) OpenDump(ctx context.Context, patientID, sessionID string) (*entities.ClinicalDump, error) {
	now := time.Now()
	dump := &entities.ClinicalDump{
		ID:               uuid.NewString(),
		PatientID:        patientID,
		ConsultSessionID: sessionID,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.dumps.Create(ctx, dump); err != nil {
		return nil, err
	}
	return dump, nil
}

// SaveLiveTranscript persists the transcript accumulated during a live
// session to both the clinical dump and the consult session. A blank
// transcript is skipped.
func (s *ConsultService) SaveLiveTranscript(ctx context.Context, dumpID, sessionID, transcript string) error {
	if strings.TrimSpace(transcript) == "" {
		return nil
	}

	dump, err := s.dumps.GetByID(ctx, dumpID)
	if err != nil {
		return err
	}
	dump.TranscriptText = transcript
	dump.UpdatedAt = time.Now()
	if err := s.dumps.Update(ctx, dump); err != nil {
		return err
	}

	session, err := s.consults.GetByID(ctx, sessionID)
	if err != nil {
		return err
	}
	session.TranscriptText = transcript
	return s.consults.Update(ctx, session)
}

// Stop closes a consult session with its final transcript and runs the
// analysis pass. If the model response cannot be parsed, the session still
// closes with fallback insights carrying the raw response.
func (s *ConsultService) Stop(ctx context.Context, sessionID, transcript string) (*entities.ConsultSession, error) {
	session, err := s.consults.GetByID(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	session.EndedAt = &now
	session.TranscriptText = transcript

	if strings.TrimSpace(transcript) != "" {
		patient, err := s.patients.GetByID(ctx, session.PatientID)
		if err != nil {
			return nil, err
		}
		session.Insights = s.analyzeTranscript(ctx, patient, transcript)
		session.SOAPNote = &session.Insights.SOAP
	}

	if err := s.consults.Update(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// analyzeTranscript runs the structured analysis call over the transcript.
// Failures degrade to insights that preserve the raw response for manual
// review.
func (s *ConsultService) analyzeTranscript(ctx context.Context, patient *entities.Patient, transcript string) *entities.ConsultInsights {
	prompt := prompts.BuildConsultAnalysisPrompt(prompts.ConsultAnalysisInput{
		PatientName:   patient.Name,
		PatientAge:    patient.Age,
		PatientGender: patient.Gender,
		Conditions:    patient.Conditions,
		Medications:   patient.Medications,
		Allergies:     patient.Allergies,
		Vitals:        VitalsSummary(patient),
		Transcript:    transcript,
	})

	raw, err := s.llm.Generate(ctx, prompt, 2000)
	if err != nil {
		log.Warn().Err(err).Msg("Consult analysis call failed")
		return fallbackInsights(transcript, "")
	}

	insights := &entities.ConsultInsights{}
	if !parse.Object(raw, insights) {
		log.Warn().Msg("Could not parse consult analysis response")
		return fallbackInsights(transcript, raw)
	}
	if insights.Disclaimer == "" {
		insights.Disclaimer = analysisDisclaimer
	}
	return insights
}

func fallbackInsights(transcript, rawResponse string) *entities.ConsultInsights {
	return &entities.ConsultInsights{
		CleanTranscript: transcript,
		Disclaimer:      analysisDisclaimer,
		RawResponse:     rawResponse,
	}
}

// TranscribeFile transcribes an uploaded audio recording.
func (s *ConsultService) TranscribeFile(ctx context.Context, audio []byte, filename, language string) (string, error) {
	if s.speech == nil {
		return "", apperrors.NewExternalError("speech-to-text provider is not configured", nil)
	}
	return s.speech.Transcribe(ctx, audio, filename, language)
}

// SaveDump appends transcript text to the patient's clinical dump for the
// session, creating the dump row on first write.
func (s *ConsultService) SaveDump(ctx context.Context, patientID, sessionID, text string) (*entities.ClinicalDump, error) {
	existing, err := s.dumps.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	for _, d := range existing {
		if sessionID != "" && d.ConsultSessionID == sessionID {
			d.TranscriptText = text
			if d.CombinedDump != "" {
				d.CombinedDump += "\n" + text
			} else {
				d.CombinedDump = text
			}
			d.UpdatedAt = time.Now()
			if err := s.dumps.Update(ctx, d); err != nil {
				return nil, err
			}
			return d, nil
		}
	}

	now := time.Now()
	dump := &entities.ClinicalDump{
		ID:               uuid.NewString(),
		PatientID:        patientID,
		ConsultSessionID: sessionID,
		TranscriptText:   text,
		CombinedDump:     text,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.dumps.Create(ctx, dump); err != nil {
		return nil, err
	}
	return dump, nil
}

// AnalyzeReport summarizes an uploaded document and stores the insight.
func (s *ConsultService) AnalyzeReport(ctx context.Context, doc *entities.Document) (*entities.ReportInsight, error) {
	raw, err := s.llm.Generate(ctx, prompts.BuildReportAnalysisPrompt(doc.Title, doc.DocType, doc.ExtractedText), 400)
	if err != nil {
		return nil, err
	}

	insight := &entities.ReportInsight{
		ID:        uuid.NewString(),
		PatientID: doc.PatientID,
		Summary:   strings.TrimSpace(raw),
		Flags:     extractFlags(raw),
		CreatedAt: time.Now(),
	}
	if err := s.reports.Create(ctx, insight); err != nil {
		return nil, err
	}
	return insight, nil
}

// extractFlags pulls the ⚠-marked lines out of a report summary.
func extractFlags(summary string) []entities.InsightFlag {
	var flags []entities.InsightFlag
	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*• "))
		if strings.Contains(line, "⚠") {
			flags = append(flags, entities.InsightFlag{
				Type: "warning",
				Text: strings.TrimSpace(strings.ReplaceAll(line, "⚠", "")),
			})
		}
	}
	return flags
}
