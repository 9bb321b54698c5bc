package handlers

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/parchi-ai/clinic-backend/internal/domain/providers"
	apperrors "github.com/parchi-ai/clinic-backend/pkg/errors"
)

type fakeLLM struct {
	reply string
}

func (f *fakeLLM) Generate(_ context.Context, _ string, _ int) (string, error) {
	return f.reply, nil
}

type fakePatientRepo struct {
	patients map[string]*entities.Patient
}

func (f *fakePatientRepo) Create(_ context.Context, _ *entities.Patient) error { return nil }

func (f *fakePatientRepo) GetByID(_ context.Context, id string) (*entities.Patient, error) {
	if p, ok := f.patients[id]; ok {
		return p, nil
	}
	return nil, apperrors.NewNotFoundError("patient not found: " + id)
}

func (f *fakePatientRepo) List(_ context.Context, _ string) ([]*entities.Patient, error) {
	return nil, nil
}

func (f *fakePatientRepo) Update(_ context.Context, _ *entities.Patient) error { return nil }
func (f *fakePatientRepo) Delete(_ context.Context, _ string) error            { return nil }

type fakeAppointmentRepo struct{}

func (f *fakeAppointmentRepo) Create(_ context.Context, _ *entities.Appointment) error { return nil }

func (f *fakeAppointmentRepo) GetByID(_ context.Context, id string) (*entities.Appointment, error) {
	return nil, apperrors.NewNotFoundError("appointment not found: " + id)
}

func (f *fakeAppointmentRepo) ListByPatient(_ context.Context, _ string) ([]*entities.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListAll(_ context.Context) ([]*entities.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) ListBetween(_ context.Context, _, _ time.Time) ([]*entities.Appointment, error) {
	return nil, nil
}

func (f *fakeAppointmentRepo) UpdateStatus(_ context.Context, _ string, _ entities.AppointmentStatus) error {
	return nil
}

func (f *fakeAppointmentRepo) Delete(_ context.Context, _ string) error { return nil }

type fakeVisitRepo struct{}

func (f *fakeVisitRepo) Create(_ context.Context, _ *entities.Visit) error { return nil }

func (f *fakeVisitRepo) ListByPatient(_ context.Context, _ string) ([]*entities.Visit, error) {
	return nil, nil
}

func (f *fakeVisitRepo) ListAll(_ context.Context) ([]*entities.Visit, error) { return nil, nil }

type fakeDocumentRepo struct{}

func (f *fakeDocumentRepo) Create(_ context.Context, _ *entities.Document) error { return nil }

func (f *fakeDocumentRepo) GetByID(_ context.Context, id string) (*entities.Document, error) {
	return nil, apperrors.NewNotFoundError("document not found: " + id)
}

func (f *fakeDocumentRepo) ListByPatient(_ context.Context, _ string) ([]*entities.Document, error) {
	return nil, nil
}

func (f *fakeDocumentRepo) ListAll(_ context.Context) ([]*entities.Document, error) {
	return nil, nil
}

type fakeConsultRepo struct {
	mu       sync.Mutex
	sessions map[string]*entities.ConsultSession
}

func newFakeConsultRepo(sessions ...*entities.ConsultSession) *fakeConsultRepo {
	f := &fakeConsultRepo{sessions: make(map[string]*entities.ConsultSession)}
	for _, s := range sessions {
		f.sessions[s.ID] = s
	}
	return f
}

func (f *fakeConsultRepo) Create(_ context.Context, session *entities.ConsultSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeConsultRepo) GetByID(_ context.Context, id string) (*entities.ConsultSession, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		copied := *s
		return &copied, nil
	}
	return nil, apperrors.NewNotFoundError("consult session not found: " + id)
}

func (f *fakeConsultRepo) Update(_ context.Context, session *entities.ConsultSession) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *session
	f.sessions[session.ID] = &copied
	return nil
}

func (f *fakeConsultRepo) ListByPatient(_ context.Context, _ string) ([]*entities.ConsultSession, error) {
	return nil, nil
}

func (f *fakeConsultRepo) transcript(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.sessions[id]; ok {
		return s.TranscriptText
	}
	return ""
}

type fakeDumpRepo struct {
	mu    sync.Mutex
	dumps map[string]*entities.ClinicalDump
}

func newFakeDumpRepo() *fakeDumpRepo {
	return &fakeDumpRepo{dumps: make(map[string]*entities.ClinicalDump)}
}

func (f *fakeDumpRepo) Create(_ context.Context, dump *entities.ClinicalDump) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *dump
	f.dumps[dump.ID] = &copied
	return nil
}

func (f *fakeDumpRepo) Update(_ context.Context, dump *entities.ClinicalDump) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *dump
	f.dumps[dump.ID] = &copied
	return nil
}

func (f *fakeDumpRepo) GetByID(_ context.Context, id string) (*entities.ClinicalDump, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.dumps[id]; ok {
		copied := *d
		return &copied, nil
	}
	return nil, apperrors.NewNotFoundError("clinical dump not found: " + id)
}

func (f *fakeDumpRepo) ListByPatient(_ context.Context, _ string) ([]*entities.ClinicalDump, error) {
	return nil, nil
}

func (f *fakeDumpRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.dumps)
}

func (f *fakeDumpRepo) transcript(id string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if d, ok := f.dumps[id]; ok {
		return d.TranscriptText
	}
	return ""
}

type fakeReportRepo struct{}

func (f *fakeReportRepo) Create(_ context.Context, _ *entities.ReportInsight) error { return nil }

func (f *fakeReportRepo) GetLatestByPatient(_ context.Context, id string) (*entities.ReportInsight, error) {
	return nil, apperrors.NewNotFoundError("no report insight for patient: " + id)
}

type fakeIntakeRepo struct {
	mu   sync.Mutex
	rows []*entities.IntakeSummary
}

func (f *fakeIntakeRepo) Create(_ context.Context, summary *entities.IntakeSummary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rows = append(f.rows, summary)
	return nil
}

func (f *fakeIntakeRepo) GetLatestByPatient(_ context.Context, id string) (*entities.IntakeSummary, error) {
	return nil, apperrors.NewNotFoundError("no intake summary for patient: " + id)
}

func (f *fakeIntakeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

type fakeEventBus struct {
	mu sync.Mutex
	ch chan *entities.ProgressEvent
}

func (f *fakeEventBus) channel() chan *entities.ProgressEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ch == nil {
		f.ch = make(chan *entities.ProgressEvent, 64)
	}
	return f.ch
}

func (f *fakeEventBus) Publish(_ context.Context, _ string, event *entities.ProgressEvent) error {
	select {
	case f.channel() <- event:
	default:
	}
	return nil
}

func (f *fakeEventBus) Subscribe(_ context.Context, _ string) (<-chan *entities.ProgressEvent, error) {
	return f.channel(), nil
}

func (f *fakeEventBus) Unsubscribe(_ context.Context, _ string) error { return nil }
func (f *fakeEventBus) Close() error                                  { return nil }

// fakeLiveSession feeds scripted upstream messages to the transcription
// session; closing the message channel ends the stream like a remote EOF.
type fakeLiveSession struct {
	mu     sync.Mutex
	msgs   chan *providers.LiveServerMessage
	closed chan struct{}
	once   sync.Once
	sent   [][]byte
}

func newFakeLiveSession() *fakeLiveSession {
	return &fakeLiveSession{
		msgs:   make(chan *providers.LiveServerMessage, 8),
		closed: make(chan struct{}),
	}
}

func (s *fakeLiveSession) SendAudio(_ context.Context, chunk []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, chunk)
	return nil
}

func (s *fakeLiveSession) Receive(_ context.Context) (*providers.LiveServerMessage, error) {
	select {
	case msg, ok := <-s.msgs:
		if !ok {
			return nil, io.EOF
		}
		return msg, nil
	case <-s.closed:
		return nil, io.EOF
	}
}

func (s *fakeLiveSession) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type fakeLiveProvider struct {
	session providers.LiveSession
}

func (p *fakeLiveProvider) Connect(_ context.Context) (providers.LiveSession, error) {
	return p.session, nil
}
