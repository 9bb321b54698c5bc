package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/parchi-ai/clinic-backend/internal/domain/entities"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	texts []struct{ to, body string }
	err   error
}

func (f *fakeSender) SendText(ctx context.Context, to, body string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.texts = append(f.texts, struct{ to, body string }{to, body})
	return "msg-1", nil
}

func (f *fakeSender) SendTemplate(ctx context.Context, to, templateName, languageCode string, parameters []string) (string, error) {
	return "msg-1", f.err
}

func TestReminderService_SendsConfirmation(t *testing.T) {
	patient := testPatient()
	patient.Phone = "+911234567890"
	sender := &fakeSender{}
	svc := NewReminderService(newFakePatientRepo(patient), sender)

	appt := &entities.Appointment{
		ID:        "appt-1",
		PatientID: patient.ID,
		StartTime: time.Date(2026, 9, 4, 10, 30, 0, 0, time.UTC),
	}
	require.NoError(t, svc.SendAppointmentConfirmation(context.Background(), appt))

	require.Len(t, sender.texts, 1)
	assert.Equal(t, "+911234567890", sender.texts[0].to)
	assert.Contains(t, sender.texts[0].body, "Asha Rao")
	assert.Contains(t, sender.texts[0].body, "04 Sep 2026")
}

func TestReminderService_NoSenderIsNoop(t *testing.T) {
	svc := NewReminderService(newFakePatientRepo(testPatient()), nil)
	appt := &entities.Appointment{ID: "appt-1", PatientID: "p-1"}
	assert.NoError(t, svc.SendAppointmentConfirmation(context.Background(), appt))
}

func TestReminderService_SkipsPatientWithoutPhone(t *testing.T) {
	sender := &fakeSender{}
	svc := NewReminderService(newFakePatientRepo(testPatient()), sender)

	appt := &entities.Appointment{ID: "appt-1", PatientID: "p-1"}
	require.NoError(t, svc.SendAppointmentConfirmation(context.Background(), appt))
	assert.Empty(t, sender.texts)
}

func TestReminderService_PropagatesSendError(t *testing.T) {
	patient := testPatient()
	patient.Phone = "+911234567890"
	sender := &fakeSender{err: errors.New("rate limited")}
	svc := NewReminderService(newFakePatientRepo(patient), sender)

	appt := &entities.Appointment{ID: "appt-1", PatientID: patient.ID}
	err := svc.SendAppointmentConfirmation(context.Background(), appt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}

func TestReminderService_UnknownPatient(t *testing.T) {
	svc := NewReminderService(newFakePatientRepo(), &fakeSender{})
	appt := &entities.Appointment{ID: "appt-1", PatientID: "missing"}
	assert.Error(t, svc.SendAppointmentConfirmation(context.Background(), appt))
}
