package evaluation

import (
	"context"
	"strings"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/ai/parse"
	"github.com/parchi-ai/clinic-backend/internal/ai/prompts"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
)

// Runner evaluates the intake prompt chain across a set of golden examples.
type Runner struct {
	llm providers.LLMProvider
}

func NewRunner(llm providers.LLMProvider) *Runner {
	return &Runner{llm: llm}
}

// Run executes the intake field prompts for every golden example and scores
// the outputs against the references. A failed example is counted and
// skipped rather than aborting the run.
func (r *Runner) Run(ctx context.Context, examples []GoldenExample) (*EvalSummary, []EvalResult, error) {
	summary := &EvalSummary{
		TotalExamples: len(examples),
		ByDifficulty:  make(map[string]*DifficultySummary),
	}

	results := make([]EvalResult, 0, len(examples))
	for _, ex := range examples {
		result := r.evaluate(ctx, ex)
		results = append(results, result)
		r.updateSummary(summary, result)
	}

	r.finalizeSummary(summary)
	return summary, results, nil
}

func (r *Runner) evaluate(ctx context.Context, ex GoldenExample) EvalResult {
	result := EvalResult{
		ExampleID:  ex.ID,
		Difficulty: ex.Difficulty,
	}
	start := time.Now()
	defer func() { result.Latency = time.Since(start) }()

	chiefComplaint, trace := r.generateScalar(ctx, "chief_complaint",
		prompts.BuildIntakeChiefComplaintPrompt(ex.AppointmentReason, ex.PatientContext), 100)
	result.Traces = append(result.Traces, trace)
	if trace.Error != "" {
		result.Failed = true
		return result
	}

	onset, trace := r.generateScalar(ctx, "onset",
		prompts.BuildIntakeOnsetPrompt(chiefComplaint, ex.PatientContext), 50)
	result.Traces = append(result.Traces, trace)

	severity, trace := r.generateScalar(ctx, "severity",
		prompts.BuildIntakeSeverityPrompt(chiefComplaint, ex.PatientContext), 50)
	result.Traces = append(result.Traces, trace)

	findingsPrompt := prompts.BuildIntakeFindingsPrompt(chiefComplaint, ex.PatientContext)
	findingsRaw, err := r.llm.Generate(ctx, findingsPrompt, 300)
	findings := parse.StringList(findingsRaw)
	findingsTrace := ExecutionTrace{
		Field:     "findings",
		Prompt:    findingsPrompt,
		RawOutput: findingsRaw,
		Parsed:    strings.Join(findings, "; "),
	}
	if err != nil {
		findingsTrace.Error = err.Error()
	}
	result.Traces = append(result.Traces, findingsTrace)

	result.ChiefComplaint = FieldMatch(ex.Expected.ChiefComplaint, chiefComplaint)
	result.Onset = FieldMatch(ex.Expected.Onset, onset)
	result.Severity = FieldMatch(ex.Expected.Severity, severity)
	result.FindingsF1 = FindingsF1(ex.Expected.Findings, findings)
	result.Overall = (result.ChiefComplaint + result.Onset + result.Severity + result.FindingsF1) / 4

	return result
}

func (r *Runner) generateScalar(ctx context.Context, field, prompt string, maxTokens int) (string, ExecutionTrace) {
	trace := ExecutionTrace{Field: field, Prompt: prompt}

	raw, err := r.llm.Generate(ctx, prompt, maxTokens)
	if err != nil {
		trace.Error = err.Error()
		return "", trace
	}

	parsed := parse.StripQuotes(raw)
	trace.RawOutput = raw
	trace.Parsed = parsed
	return parsed, trace
}

func (r *Runner) updateSummary(s *EvalSummary, res EvalResult) {
	if res.Failed {
		s.FailedExamples++
		return
	}

	s.AvgChiefComplaint += res.ChiefComplaint
	s.AvgOnset += res.Onset
	s.AvgSeverity += res.Severity
	s.AvgFindingsF1 += res.FindingsF1
	s.AvgOverall += res.Overall
	s.AvgLatency += res.Latency

	if _, ok := s.ByDifficulty[res.Difficulty]; !ok {
		s.ByDifficulty[res.Difficulty] = &DifficultySummary{}
	}
	ds := s.ByDifficulty[res.Difficulty]
	ds.Count++
	ds.AvgOverall += res.Overall
}

func (r *Runner) finalizeSummary(s *EvalSummary) {
	scored := s.TotalExamples - s.FailedExamples
	if scored > 0 {
		n := float64(scored)
		s.AvgChiefComplaint /= n
		s.AvgOnset /= n
		s.AvgSeverity /= n
		s.AvgFindingsF1 /= n
		s.AvgOverall /= n
		s.AvgLatency /= time.Duration(scored)
	}

	for _, ds := range s.ByDifficulty {
		if ds.Count > 0 {
			ds.AvgOverall /= float64(ds.Count)
		}
	}
}
