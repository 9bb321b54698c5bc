package services

import (
	"context"
	"sync"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

// fakeLLM routes each prompt through a caller-supplied reply function and
// records every call for assertions.
type fakeLLM struct {
	mu    sync.Mutex
	reply func(prompt string, maxTokens int) (string, error)
	calls []llmCall
}

type llmCall struct {
	Prompt    string
	MaxTokens int
}

func (f *fakeLLM) Generate(_ context.Context, prompt string, maxTokens int) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, llmCall{Prompt: prompt, MaxTokens: maxTokens})
	f.mu.Unlock()
	return f.reply(prompt, maxTokens)
}

func (f *fakeLLM) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type fakePatientRepo struct {
	patients map[string]*entities.Patient
}

func newFakePatientRepo(patients ...*entities.Patient) *fakePatientRepo {
	repo := &fakePatientRepo{patients: map[string]*entities.Patient{}}
	for _, p := range patients {
		repo.patients[p.ID] = p
	}
	return repo
}

func (f *fakePatientRepo) Create(_ context.Context, p *entities.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) GetByID(_ context.Context, id string) (*entities.Patient, error) {
	p, ok := f.patients[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("patient not found: " + id)
	}
	return p, nil
}

func (f *fakePatientRepo) List(_ context.Context, clinicID string) ([]*entities.Patient, error) {
	var out []*entities.Patient
	for _, p := range f.patients {
		if clinicID == "" || p.ClinicID == clinicID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePatientRepo) Update(_ context.Context, p *entities.Patient) error {
	f.patients[p.ID] = p
	return nil
}

func (f *fakePatientRepo) Delete(_ context.Context, id string) error {
	delete(f.patients, id)
	return nil
}

type fakeAppointmentRepo struct {
	appointments []*entities.Appointment
}

func (f *fakeAppointmentRepo) Create(_ context.Context, a *entities.Appointment) error {
	f.appointments = append(f.appointments, a)
	return nil
}

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*entities.Appointment, error) {
	for _, a := range f.appointments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperrors.NewNotFoundError("appointment not found: " + id)
}

func (f *fakeAppointmentRepo) ListByPatient(_ context.Context, patientID string) ([]*entities.Appointment, error) {
	var out []*entities.Appointment
	for _, a := range f.appointments {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) ListAll(_ context.Context) ([]*entities.Appointment, error) {
	return f.appointments, nil
}

func (f *fakeAppointmentRepo) ListBetween(_ context.Context, from, to time.Time) ([]*entities.Appointment, error) {
	var out []*entities.Appointment
	for _, a := range f.appointments {
		if !a.StartTime.Before(from) && a.StartTime.Before(to) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, id string, status entities.AppointmentStatus) error {
	for _, a := range f.appointments {
		if a.ID == id {
			a.Status = status
			return nil
		}
	}
	return apperrors.NewNotFoundError("appointment not found: " + id)
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, id string) error {
	return nil
}

type fakeVisitRepo struct {
	visits []*entities.Visit
}

func (f *fakeVisitRepo) Create(_ context.Context, v *entities.Visit) error {
	f.visits = append(f.visits, v)
	return nil
}

func (f *fakeVisitRepo) ListByPatient(_ context.Context, patientID string) ([]*entities.Visit, error) {
	var out []*entities.Visit
	for _, v := range f.visits {
		if v.PatientID == patientID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVisitRepo) ListAll(_ context.Context) ([]*entities.Visit, error) {
	return f.visits, nil
}

type fakeDocumentRepo struct {
	documents []*entities.Document
}

func (f *fakeDocumentRepo) Create(_ context.Context, d *entities.Document) error {
	f.documents = append(f.documents, d)
	return nil
}

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*entities.Document, error) {
	for _, d := range f.documents {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, apperrors.NewNotFoundError("document not found")
}

func (f *fakeDocumentRepo) ListByPatient(_ context.Context, patientID string) ([]*entities.Document, error) {
	var out []*entities.Document
	for _, d := range f.documents {
		if d.PatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeDocumentRepo) ListAll(_ context.Context) ([]*entities.Document, error) {
	return f.documents, nil
}

type fakeConsultRepo struct {
	sessions map[string]*entities.ConsultSession
}

func newFakeConsultRepo() *fakeConsultRepo {
	return &fakeConsultRepo{sessions: map[string]*entities.ConsultSession{}}
}

func (f *fakeConsultRepo) Create(_ context.Context, s *entities.ConsultSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeConsultRepo) GetByID(_ context.Context, id string) (*entities.ConsultSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.NewNotFoundError("consult session not found: " + id)
	}
	return s, nil
}

func (f *fakeConsultRepo) Update(_ context.Context, s *entities.ConsultSession) error {
	f.sessions[s.ID] = s
	return nil
}

func (f *fakeConsultRepo) ListByPatient(_ context.Context, patientID string) ([]*entities.ConsultSession, error) {
	var out []*entities.ConsultSession
	for _, s := range f.sessions {
		if s.PatientID == patientID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeDumpRepo struct {
	dumps []*entities.ClinicalDump
}

func (f *fakeDumpRepo) Create(_ context.Context, d *entities.ClinicalDump) error {
	f.dumps = append(f.dumps, d)
	return nil
}

func (f *fakeDumpRepo) Update(_ context.Context, d *entities.ClinicalDump) error {
	for i, existing := range f.dumps {
		if existing.ID == d.ID {
			f.dumps[i] = d
			return nil
		}
	}
	return apperrors.NewNotFoundError("clinical dump not found: " + d.ID)
}

func (f *fakeDumpRepo) GetByID(_ context.Context, id string) (*entities.ClinicalDump, error) {
	for _, d := range f.dumps {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, apperrors.NewNotFoundError("clinical dump not found: " + id)
}

func (f *fakeDumpRepo) ListByPatient(_ context.Context, patientID string) ([]*entities.ClinicalDump, error) {
	var out []*entities.ClinicalDump
	for _, d := range f.dumps {
		if d.PatientID == patientID {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeIntakeRepo struct {
	summaries []*entities.IntakeSummary
}

func (f *fakeIntakeRepo) Create(_ context.Context, s *entities.IntakeSummary) error {
	f.summaries = append(f.summaries, s)
	return nil
}

func (f *fakeIntakeRepo) GetLatestByPatient(_ context.Context, patientID string) (*entities.IntakeSummary, error) {
	var latest *entities.IntakeSummary
	for _, s := range f.summaries {
		if s.PatientID != patientID {
			continue
		}
		if latest == nil || s.CreatedAt.After(latest.CreatedAt) {
			latest = s
		}
	}
	if latest == nil {
		return nil, apperrors.NewNotFoundError("no intake summary for patient " + patientID)
	}
	return latest, nil
}

type fakeDifferentialRepo struct {
	replaceCalls int
	current      []*entities.DifferentialCandidate
}

func (f *fakeDifferentialRepo) Replace(_ context.Context, patientID, appointmentID string, candidates []*entities.DifferentialCandidate) error {
	f.replaceCalls++
	f.current = candidates
	return nil
}

func (f *fakeDifferentialRepo) ListByPatient(_ context.Context, patientID string) ([]*entities.DifferentialCandidate, error) {
	return f.current, nil
}

type fakeReportRepo struct {
	insights []*entities.ReportInsight
}

func (f *fakeReportRepo) Create(_ context.Context, i *entities.ReportInsight) error {
	f.insights = append(f.insights, i)
	return nil
}

func (f *fakeReportRepo) GetLatestByPatient(_ context.Context, patientID string) (*entities.ReportInsight, error) {
	if len(f.insights) == 0 {
		return nil, apperrors.NewNotFoundError("no report insight for patient " + patientID)
	}
	return f.insights[len(f.insights)-1], nil
}

type fakeEventBus struct {
	mu     sync.Mutex
	events []*entities.ProgressEvent
}

func (f *fakeEventBus) Publish(_ context.Context, channel string, event *entities.ProgressEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventBus) Subscribe(_ context.Context, channel string) (<-chan *entities.ProgressEvent, error) {
	ch := make(chan *entities.ProgressEvent)
	close(ch)
	return ch, nil
}

func (f *fakeEventBus) Unsubscribe(_ context.Context, channel string) error { return nil }

func (f *fakeEventBus) Close() error { return nil }

func (f *fakeEventBus) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

var _ providers.EventBus = (*fakeEventBus)(nil)

func testPatient() *entities.Patient {
	return &entities.Patient{
		ID:          "p-1",
		ClinicID:    "c-1",
		Name:        "Asha Rao",
		Age:         42,
		Gender:      "female",
		Conditions:  []string{"Type 2 Diabetes"},
		Medications: []string{"Metformin"},
		Allergies:   []string{"Penicillin"},
		Vitals: &entities.Vitals{
			BPSystolic:   150,
			BPDiastolic:  95,
			SpO2:         97,
			HeartRate:    88,
			TemperatureF: 98.6,
			RecordedAt:   time.Now(),
		},
	}
}

func apptForPatient(patientID, reason string) *entities.Appointment {
	return &entities.Appointment{
		ID:        "a-" + patientID,
		PatientID: patientID,
		StartTime: time.Now().Add(time.Hour),
		Status:    entities.AppointmentStatusScheduled,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
}

func testDocument(patientID, title, docType string) *entities.Document {
	return &entities.Document{
		ID:            "d-" + patientID,
		PatientID:     patientID,
		Title:         title,
		DocType:       docType,
		ExtractedText: "Hemoglobin 13.5, HbA1c 8.2",
		UploadedAt:    time.Now(),
	}
}

func newTestContextService(patients *fakePatientRepo, visits *fakeVisitRepo, documents *fakeDocumentRepo, consults *fakeConsultRepo, dumps *fakeDumpRepo) *ContextService {
	if visits == nil {
		visits = &fakeVisitRepo{}
	}
	if documents == nil {
		documents = &fakeDocumentRepo{}
	}
	if consults == nil {
		consults = newFakeConsultRepo()
	}
	if dumps == nil {
		dumps = &fakeDumpRepo{}
	}
	return NewContextService(patients, visits, documents, consults, dumps)
}
