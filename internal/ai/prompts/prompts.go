// Package prompts holds the LLM prompt templates for the clinical AI
// features. Templates are tuned for gemma-3-27b-it: small token budgets,
// explicit output contracts, and JSON envelopes wherever the caller parses
// the response structurally.
package prompts

import (
	"fmt"
	"strings"
)

const intakeChiefComplaintTemplate = `You are an expert medical scribe.
Based on the patient's appointment reason and records, identify the **Chief Complaint**.
Output ONLY the chief complaint as a brief medical phrase (max 5 words). Do not add labels or extra text.

Patient Reason: %s
Patient Context: %s`

const intakeOnsetTemplate = `You are an expert medical scribe.
Determine the **Onset** of the patient's current complaint.
Output ONLY the duration (e.g., "3 days ago", "Twice daily", "Since yesterday"). Max 5 words.
If not mentioned/applicable, output "As per consultation".

Chief Complaint: %s
Patient Context: %s`

const intakeSeverityTemplate = `You are an expert medical scribe.
Assess the **Severity** of the patient's condition.
Output ONLY a short severity rating (e.g., "Moderate", "Severe", "Critical", "Mild"). Max 5 words. Do not explain.

Chief Complaint: %s
Patient Context: %s`

const intakeFindingsTemplate = `You are an expert medical scribe.
Extract **Key Findings** and abnormalities from the patient's context and history that are relevant to the current visit.
Output a JSON list of strings. Example: ["BP 140/90", "Photosensitive", "⚠ HbA1c 8.2%%"].
Flag abnormal values with ⚠.
Each finding must be extremely brief (max 5 words).

IMPORTANT: Do NOT include any of the following as separate findings, they are already displayed elsewhere on the patient card:
- Chronic conditions / known diagnoses (e.g., "Has Type 2 Diabetes", "History of hypertension")
- Known allergies (e.g., "Allergic to penicillin", "No known allergies")
- Current medications (e.g., "Currently taking Metformin", "On Lisinopril 10mg")

Instead focus on:
- Abnormal vital signs or lab values
- New or acute symptoms reported during this visit
- Relevant physical exam findings
- Changes from baseline or recent trends
- Risk factors pertinent to the chief complaint

Chief Complaint: %s
Patient Context: %s

Output ONLY the JSON list.`

const intakeContextTemplate = `You are an expert medical scribe.
Write a brief **Medical Context** paragraph (2-4 sentences) that synthesizes the clinically relevant background for this visit.

You MUST include (if available in the patient context):
1. Relevant presenting symptoms from transcripts or clinical dumps (location, quality, radiation, aggravating/relieving factors, associated symptoms like nausea, vomiting, fever).
2. Pertinent past medical history (conditions).
3. Current medications and known drug allergies (name the allergen and reaction).
4. Risk factors relevant to the current presentation.

IMPORTANT RULES:
- ONLY state facts that are explicitly present in the Patient Context below. Do NOT invent or assume information.
- If a piece of data is not available, do NOT mention it at all. Never say "denies" or "reports no" unless the patient explicitly said so in a transcript.
- You may briefly reference the chief complaint to connect symptoms to context, but do not just restate it.

Chief Complaint: %s
Patient Context: %s`

// BuildIntakeChiefComplaintPrompt asks for the chief complaint given the
// appointment reason and the assembled patient context.
func BuildIntakeChiefComplaintPrompt(reason, patientContext string) string {
	return fmt.Sprintf(intakeChiefComplaintTemplate, reason, patientContext)
}

func BuildIntakeOnsetPrompt(chiefComplaint, patientContext string) string {
	return fmt.Sprintf(intakeOnsetTemplate, chiefComplaint, patientContext)
}

func BuildIntakeSeverityPrompt(chiefComplaint, patientContext string) string {
	return fmt.Sprintf(intakeSeverityTemplate, chiefComplaint, patientContext)
}

func BuildIntakeFindingsPrompt(chiefComplaint, patientContext string) string {
	return fmt.Sprintf(intakeFindingsTemplate, chiefComplaint, patientContext)
}

func BuildIntakeContextPrompt(chiefComplaint, patientContext string) string {
	return fmt.Sprintf(intakeContextTemplate, chiefComplaint, patientContext)
}

const differentialCandidatesTemplate = `Based on the patient presentation below, identify 3-5 potential differential diagnoses.
Focus on the most clinically relevant possibilities given the symptoms and history.

Patient: %s, %dy %s
Chief Complaint: %s
History: %s
Key Findings: %s

Output ONLY a JSON list of strings.
Example: ["Migraine w/o Aura", "Tension Headache", "Sinusitis"]`

const differentialScoringTemplate = `Evaluate the likelihood of "%s" for this patient.

Patient: %s, %dy %s
Chief Complaint: %s
History: %s
Key Findings: %s

Determine:
1. Match Percentage (0-100): How well does it fit?
2. Reasoning: specific evidence pro/con (1 sentence).

Output ONLY JSON:
{
  "condition": "%s",
  "match_pct": <number>,
  "reasoning": "<text>"
}`

// DifferentialInput is the shared presentation block for the candidate and
// scoring prompts.
type DifferentialInput struct {
	PatientName    string
	PatientAge     int
	PatientGender  string
	ChiefComplaint string
	History        string
	Findings       string
}

func BuildDifferentialCandidatesPrompt(in DifferentialInput) string {
	return fmt.Sprintf(differentialCandidatesTemplate,
		in.PatientName, in.PatientAge, in.PatientGender,
		in.ChiefComplaint, in.History, in.Findings)
}

func BuildDifferentialScoringPrompt(condition string, in DifferentialInput) string {
	return fmt.Sprintf(differentialScoringTemplate,
		condition,
		in.PatientName, in.PatientAge, in.PatientGender,
		in.ChiefComplaint, in.History, in.Findings,
		condition)
}

const patientQATemplate = `You are a clinical AI assistant for Parchi.ai, helping the doctor access patient information quickly and accurately.

## Important Rules:
1. Answer ONLY based on the provided patient data below
2. If information is not available, say "This information is not in the patient's records."
3. Be concise and clinical - use bullet points for lists
4. Flag abnormal values or concerns with ⚠
5. Mention relevant drug interactions if applicable
6. Always end critical information with appropriate clinical context

## Patient Record:
%s

---

Answer the doctor's question based ONLY on the above patient data. Be helpful, accurate, and clinically relevant.

## Doctor's Question:
%s`

// BuildPatientQAPrompt combines a fully rendered patient record block with
// the doctor's free-text question.
func BuildPatientQAPrompt(patientRecord, question string) string {
	return fmt.Sprintf(patientQATemplate, patientRecord, question)
}

const chatSuggestionsTemplate = `You are a clinical AI assistant for Parchi.ai. Generate exactly 3 short, specific questions that a doctor would likely want to ask about this patient RIGHT NOW during their appointment.

## Patient Info:
- Name: %s
- Age: %d, Gender: %s
- Conditions: %s
- Medications: %s
- Allergies: %s
- Vitals: %s
- Chief Complaint: %s
- Key Findings: %s

## Rules:
1. Make questions SPECIFIC to this patient's data, never generic.
2. Each question should be 4-8 words, phrased naturally.
3. Focus on: drug interactions, symptom clarification, treatment options, lab interpretation, or risk assessment.
4. If the patient has allergies, one question should relate to safe prescribing.
5. If vitals are abnormal, one question should address that.

Output exactly 3 lines, one question per line. Do not use numbering or bullets.
Example:
Any interaction between Metformin and Lisinopril?
Is BP 150/95 concerning given diabetes?
Safe antibiotics with penicillin allergy?`

// ChatSuggestionsInput holds the patient snapshot for suggestion
// generation. List fields are joined with ", "; empty lists render as
// "None recorded".
type ChatSuggestionsInput struct {
	PatientName    string
	PatientAge     int
	PatientGender  string
	Conditions     []string
	Medications    []string
	Allergies      []string
	Vitals         string
	ChiefComplaint string
	Findings       []string
}

func BuildChatSuggestionsPrompt(in ChatSuggestionsInput) string {
	return fmt.Sprintf(chatSuggestionsTemplate,
		in.PatientName, in.PatientAge, in.PatientGender,
		JoinOrNone(in.Conditions), JoinOrNone(in.Medications), JoinOrNone(in.Allergies),
		in.Vitals, in.ChiefComplaint, JoinOrNone(in.Findings))
}

const consultAnalysisTemplate = `You are a medical documentation assistant for Parchi.ai. Analyze this doctor-patient consultation and generate structured documentation.

## Patient Context:
- Name: %s
- Age: %d, Gender: %s
- Known conditions: %s
- Current medications: %s
- Allergies: %s
- Recent vitals: %s

## Consultation Transcript:
%s

## Required Output:
Generate a JSON response with this exact structure:

` + "```json" + `
{
  "clean_transcript": "A well-formatted, readable version of the conversation",
  "soap": {
    "subjective": "Patient's complaints, history in their own words. Include symptoms, duration, severity.",
    "objective": "Examination findings, vital signs, observable data from the consultation.",
    "assessment": "Clinical impression, working diagnosis, differential considerations.",
    "plan": "Treatment plan with numbered steps: medications, tests, referrals, follow-up."
  },
  "extracted_facts": {
    "symptoms": ["List of symptoms mentioned"],
    "duration": "Duration of primary complaint",
    "medications_discussed": ["Any medications discussed during consult"],
    "allergies_mentioned": ["Any allergies mentioned or confirmed"]
  },
  "follow_up_questions": ["Questions the doctor may have missed asking"],
  "differential_suggestions": [
    {"condition": "Diagnosis name", "likelihood": "high/medium/low", "reasoning": "Why this diagnosis fits"}
  ],
  "disclaimer": "These are AI-generated suggestions for reference only. Clinical judgment is required."
}
` + "```" + `

Generate ONLY the JSON, no additional text before or after.`

// ConsultAnalysisInput is the patient snapshot plus the raw transcript to
// analyze.
type ConsultAnalysisInput struct {
	PatientName   string
	PatientAge    int
	PatientGender string
	Conditions    []string
	Medications   []string
	Allergies     []string
	Vitals        string
	Transcript    string
}

func BuildConsultAnalysisPrompt(in ConsultAnalysisInput) string {
	return fmt.Sprintf(consultAnalysisTemplate,
		in.PatientName, in.PatientAge, in.PatientGender,
		JoinOrNone(in.Conditions), JoinOrNone(in.Medications), JoinOrNone(in.Allergies),
		in.Vitals, in.Transcript)
}

const reportAnalysisTemplate = `Analyze the following medical document/report and extract key insights.

Document Title: %s
Document Type: %s
Content:
%s


Generate a summary with:
1. **Key Findings**: Most important results (flag abnormals with ⚠)
2. **Clinical Significance**: What this means for patient care
3. **Recommended Actions**: Any follow-up needed

Keep response under 150 words. Use bullet points.`

func BuildReportAnalysisPrompt(title, docType, content string) string {
	return fmt.Sprintf(reportAnalysisTemplate, title, docType, content)
}

const searchCandidatesTemplate = `You are a medical search assistant.
Identify patients relevant to the query based on their summaries.

Query: "%s"

Patients:
%s

Return ONLY a JSON list of patient IDs that match the query.
Example: ["p-123", "p-456"]
If no patients match, return [].`

const searchReasoningTemplate = `Explain why this patient matches the search query.
Patient: %s
Query: "%s"

Output a SINGLE concise sentence (max 15 words) explaining the relevance.
Example: "Has a history of hypertension and recent high BP."
Do not include the patient name in the output.
`

func BuildSearchCandidatesPrompt(query, patientSummaries string) string {
	return fmt.Sprintf(searchCandidatesTemplate, query, patientSummaries)
}

func BuildSearchReasoningPrompt(patientContext, query string) string {
	return fmt.Sprintf(searchReasoningTemplate, patientContext, query)
}

// JoinOrNone renders a string list for a prompt line, falling back to
// "None recorded" when the list is empty.
func JoinOrNone(items []string) string {
	if len(items) == 0 {
		return "None recorded"
	}
	return strings.Join(items, ", ")
}
