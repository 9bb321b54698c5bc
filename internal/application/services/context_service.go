package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/repositories"
)

// ContextService assembles the patient context blocks fed into prompts.
// Context is always rebuilt from the repositories at call time so a
// generation never sees stale data.
type ContextService struct {
	patients  repositories.PatientRepository
	visits    repositories.VisitRepository
	documents repositories.DocumentRepository
	consults  repositories.ConsultRepository
	dumps     repositories.ClinicalDumpRepository
}

// NewContextService creates a new patient context service
func NewContextService(
	patients repositories.PatientRepository,
	visits repositories.VisitRepository,
	documents repositories.DocumentRepository,
	consults repositories.ConsultRepository,
	dumps repositories.ClinicalDumpRepository,
) *ContextService {
	return &ContextService{
		patients:  patients,
		visits:    visits,
		documents: documents,
		consults:  consults,
		dumps:     dumps,
	}
}

// PatientBundle is one patient's full record set loaded for prompt building.
type PatientBundle struct {
	Patient       *entities.Patient
	Documents     []*entities.Document
	Visits        []*entities.Visit
	Consults      []*entities.ConsultSession
	ClinicalDumps []*entities.ClinicalDump
}

// Load fetches the patient and every record class used for prompt context.
func (s *ContextService) Load(ctx context.Context, patientID string) (*PatientBundle, error) {
	patient, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	documents, err := s.documents.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	visits, err := s.visits.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	consults, err := s.consults.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}
	dumps, err := s.dumps.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	return &PatientBundle{
		Patient:       patient,
		Documents:     documents,
		Visits:        visits,
		Consults:      consults,
		ClinicalDumps: dumps,
	}, nil
}

// PromptContext renders the bundle as the full context block used by the
// intake summary prompts.
func (b *PatientBundle) PromptContext() string {
	profile, _ := json.MarshalIndent(map[string]any{
		"name":        b.Patient.Name,
		"age":         b.Patient.Age,
		"gender":      b.Patient.Gender,
		"conditions":  orEmptyList(b.Patient.Conditions),
		"medications": orEmptyList(b.Patient.Medications),
		"allergies":   orEmptyList(b.Patient.Allergies),
		"vitals":      b.Patient.Vitals,
	}, "", "  ")

	var docLines []string
	for _, d := range b.Documents {
		docLines = append(docLines, fmt.Sprintf("- %s (%s): %s",
			d.Title, orDefault(d.DocType, "document"), truncate(d.ExtractedText, 500)))
	}

	var visitLines []string
	for _, v := range limitVisits(b.Visits, 5) {
		visitLines = append(visitLines, fmt.Sprintf("- %s: %s",
			v.VisitTime.Format("2006-01-02"), v.BestSummary()))
	}

	var consultLines []string
	for _, c := range limitConsults(b.Consults, 5) {
		parts := []string{fmt.Sprintf("- Consult %s:", c.StartedAt.Format("2006-01-02 15:04"))}
		if c.TranscriptText != "" {
			parts = append(parts, "  Transcript excerpt: "+truncate(c.TranscriptText, 500))
		}
		if c.SOAPNote != nil {
			soap, _ := json.Marshal(c.SOAPNote)
			parts = append(parts, "  SOAP: "+truncate(string(soap), 300))
		}
		if c.Insights != nil {
			facts, _ := json.Marshal(c.Insights.ExtractedFacts)
			parts = append(parts, "  Extracted facts: "+truncate(string(facts), 300))
		}
		consultLines = append(consultLines, strings.Join(parts, "\n"))
	}

	var dumpLines []string
	for _, d := range limitDumps(b.ClinicalDumps, 5) {
		if text := d.BestText(); text != "" {
			dumpLines = append(dumpLines, fmt.Sprintf("- Dump %s: %s",
				d.CreatedAt.Format("2006-01-02"), truncate(text, 500)))
		}
	}

	return fmt.Sprintf(`
**Patient Profile:**
%s

**Documents:**
%s

**Recent Visits:**
%s

**Past Consult Transcripts:**
%s

**Clinical Dumps (Raw transcripts & notes):**
%s
`,
		profile,
		joinOrPlaceholder(docLines, "No documents available."),
		joinOrPlaceholder(visitLines, "No previous visits."),
		joinOrPlaceholder(consultLines, "No past consult transcripts."),
		joinOrPlaceholder(dumpLines, "No clinical dumps."),
	)
}

// RecordBlock renders the bundle as the patient record used by the Q&A
// prompt, demographics and vitals included.
func (b *PatientBundle) RecordBlock() string {
	p := b.Patient

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Demographics:**\n- Name: %s\n- Age: %d, Gender: %s\n- Height: %dcm, Weight: %dkg\n\n",
		p.Name, p.Age, p.Gender, p.HeightCm, p.WeightKg)
	fmt.Fprintf(&sb, "**Medical Profile:**\n- Known conditions: %s\n- Current medications: %s\n- Allergies: %s\n\n",
		joinList(p.Conditions), joinList(p.Medications), joinList(p.Allergies))
	fmt.Fprintf(&sb, "**Latest Vitals:**\n%s\n\n", VitalsLine(p))

	fmt.Fprintf(&sb, "## Documents on File:\n%s\n\n", joinOrPlaceholder(docTitles(b.Documents), "No documents on file."))

	var visitLines []string
	for _, v := range limitVisits(b.Visits, 5) {
		visitLines = append(visitLines, fmt.Sprintf("- %s: %s", v.VisitTime.Format("2006-01-02"), truncate(v.BestSummary(), 300)))
	}
	fmt.Fprintf(&sb, "## Past Visit Summaries:\n%s\n\n", joinOrPlaceholder(visitLines, "No past visits."))

	var consultLines []string
	for _, c := range limitConsults(b.Consults, 3) {
		consultLines = append(consultLines, fmt.Sprintf("- %s: %s", c.StartedAt.Format("2006-01-02"), truncate(c.TranscriptText, 200)))
	}
	fmt.Fprintf(&sb, "## Recent Consult Sessions:\n%s\n\n", joinOrPlaceholder(consultLines, "No consult sessions."))

	var dumpLines []string
	for _, d := range limitDumps(b.ClinicalDumps, 5) {
		if text := d.BestText(); text != "" {
			dumpLines = append(dumpLines, fmt.Sprintf("- %s: %s", d.CreatedAt.Format("2006-01-02"), truncate(text, 500)))
		}
	}
	fmt.Fprintf(&sb, "## Clinical Dumps (Raw consultation transcripts & notes):\n%s",
		joinOrPlaceholder(dumpLines, "No clinical dumps."))

	return sb.String()
}

// VitalsLine renders the latest vitals as a compact single-value-per-line
// block, "Not recorded" when absent.
func VitalsLine(p *entities.Patient) string {
	v := p.Vitals
	if v == nil {
		return "- Not recorded"
	}
	return fmt.Sprintf("- BP: %d/%d mmHg\n- SpO2: %d%%\n- Heart Rate: %d bpm\n- Temperature: %.1f°F",
		v.BPSystolic, v.BPDiastolic, v.SpO2, v.HeartRate, v.TemperatureF)
}

// VitalsSummary renders vitals as one comma-separated line for prompt
// headers.
func VitalsSummary(p *entities.Patient) string {
	v := p.Vitals
	if v == nil {
		return "Not recorded"
	}
	return fmt.Sprintf("BP %d/%d, SpO2 %d%%, HR %d bpm, Temp %.1f°F",
		v.BPSystolic, v.BPDiastolic, v.SpO2, v.HeartRate, v.TemperatureF)
}

// truncate clips s to at most max bytes, backing up to a rune boundary so
// multibyte characters are never split.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}

func joinList(items []string) string {
	if len(items) == 0 {
		return "None recorded"
	}
	return strings.Join(items, ", ")
}

func joinOrPlaceholder(lines []string, placeholder string) string {
	if len(lines) == 0 {
		return placeholder
	}
	return strings.Join(lines, "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func orEmptyList(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

func docTitles(docs []*entities.Document) []string {
	var lines []string
	for _, d := range docs {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s",
			d.Title, orDefault(d.DocType, "document"), truncate(d.ExtractedText, 300)))
	}
	return lines
}

func limitVisits(visits []*entities.Visit, n int) []*entities.Visit {
	if len(visits) > n {
		return visits[:n]
	}
	return visits
}

func limitConsults(consults []*entities.ConsultSession, n int) []*entities.ConsultSession {
	if len(consults) > n {
		return consults[:n]
	}
	return consults
}

func limitDumps(dumps []*entities.ClinicalDump, n int) []*entities.ClinicalDump {
	if len(dumps) > n {
		return dumps[:n]
	}
	return dumps
}
