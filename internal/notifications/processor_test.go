package notifications

import (
	"context"
	"encoding/json"
	"errors"
	"net/textproto"
	"testing"
	"time"

	"medibook/internal/appointments/events"
	doctorserrors "medibook/internal/doctors/errors"
	userserrors "medibook/internal/users/errors"
	"medibook/pkg/kafka"
	"medibook/pkg/logger"
	"medibook/pkg/mailer"
	"medibook/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	patientID    = "665f1c2a9b1e8a0012345678"
	doctorID     = "665f1c2a9b1e8a00123456aa"
	doctorUserID = "665f1c2a9b1e8a00123456bb"
)

type fakeUsers struct {
	byID map[string]*model.User
	err  error
}

func (f *fakeUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, userserrors.ErrNotFound
}

type fakeDoctors map[string]*model.Doctor

func (f fakeDoctors) FindByID(_ context.Context, id string) (*model.Doctor, error) {
	if d, ok := f[id]; ok {
		return d, nil
	}
	return nil, doctorserrors.ErrNotFound
}

type fakeMailer struct {
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email mailer.Email) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, email)
	return nil
}

func newProcessor(users *fakeUsers, m *fakeMailer) *Processor {
	doctors := fakeDoctors{doctorID: {ID: doctorID, UserID: doctorUserID}}
	return NewProcessor(users, doctors, m, time.Second, logger.Discard())
}

func defaultUsers() *fakeUsers {
	return &fakeUsers{byID: map[string]*model.User{
		patientID:    {ID: patientID, Email: "karim@example.com"},
		doctorUserID: {ID: doctorUserID, Email: "rahima@example.com"},
	}}
}

func message(t *testing.T, evt events.AppointmentEvent) kafka.Message {
	t.Helper()
	value, err := json.Marshal(evt)
	require.NoError(t, err)
	return kafka.Message{
		Key:     evt.AppointmentID,
		Value:   value,
		Headers: map[string]string{kafka.HeaderEventType: evt.Type},
	}
}

func event(eventType string, status model.AppointmentStatus) events.AppointmentEvent {
	return events.AppointmentEvent{
		Type:            eventType,
		AppointmentID:   "665f1c2a9b1e8a00123456ff",
		PatientID:       patientID,
		DoctorID:        doctorID,
		AppointmentDate: "2026-11-02",
		AppointmentTime: "09:00-10:00",
		Status:          status,
		PatientName:     "Karim Uddin",
		DoctorName:      "Dr. Rahima Khan",
	}
}

func TestHandle_CreatedEmailsPatientAndDoctor(t *testing.T) {
	m := &fakeMailer{}
	p := newProcessor(defaultUsers(), m)

	err := p.Handle(context.Background(), message(t, event(events.TypeCreated, model.StatusPending)))
	require.NoError(t, err)

	require.Len(t, m.sent, 2)
	assert.Equal(t, "karim@example.com", m.sent[0].To)
	assert.Contains(t, m.sent[0].Body, "2026-11-02 at 09:00-10:00")
	assert.Equal(t, "rahima@example.com", m.sent[1].To)
	assert.Equal(t, "New appointment request", m.sent[1].Subject)
}

func TestHandle_StatusChanged(t *testing.T) {
	m := &fakeMailer{}
	p := newProcessor(defaultUsers(), m)

	evt := event(events.TypeStatusChanged, model.StatusCompleted)
	evt.Prescription = "Rest for two days"
	require.NoError(t, p.Handle(context.Background(), message(t, evt)))

	require.Len(t, m.sent, 1)
	assert.Equal(t, "Appointment completed", m.sent[0].Subject)
	assert.Contains(t, m.sent[0].Body, "Rest for two days")
}

func TestHandle_Reminder(t *testing.T) {
	m := &fakeMailer{}
	p := newProcessor(defaultUsers(), m)

	require.NoError(t, p.Handle(context.Background(), message(t, event(events.TypeReminder, model.StatusConfirmed))))
	require.Len(t, m.sent, 1)
	assert.Equal(t, "Appointment reminder", m.sent[0].Subject)
}

func TestHandle_ErrorClassification(t *testing.T) {
	tests := []struct {
		name      string
		users     *fakeUsers
		mailErr   error
		msg       func(t *testing.T) kafka.Message
		wantRetry bool
	}{
		{
			name:  "bad payload",
			users: defaultUsers(),
			msg: func(*testing.T) kafka.Message {
				return kafka.Message{Value: []byte("{not json")}
			},
			wantRetry: false,
		},
		{
			name:  "unknown patient",
			users: &fakeUsers{byID: map[string]*model.User{}},
			msg: func(t *testing.T) kafka.Message {
				return message(t, event(events.TypeReminder, model.StatusConfirmed))
			},
			wantRetry: false,
		},
		{
			name:  "user store down",
			users: &fakeUsers{err: errors.New("connection refused")},
			msg: func(t *testing.T) kafka.Message {
				return message(t, event(events.TypeReminder, model.StatusConfirmed))
			},
			wantRetry: true,
		},
		{
			name:    "smtp busy",
			users:   defaultUsers(),
			mailErr: &textproto.Error{Code: 421, Msg: "try again later"},
			msg: func(t *testing.T) kafka.Message {
				return message(t, event(events.TypeReminder, model.StatusConfirmed))
			},
			wantRetry: true,
		},
		{
			name:    "smtp rejects recipient",
			users:   defaultUsers(),
			mailErr: &textproto.Error{Code: 550, Msg: "no such user"},
			msg: func(t *testing.T) kafka.Message {
				return message(t, event(events.TypeReminder, model.StatusConfirmed))
			},
			wantRetry: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProcessor(tt.users, &fakeMailer{err: tt.mailErr})
			err := p.Handle(context.Background(), tt.msg(t))
			require.Error(t, err)
			assert.Equal(t, tt.wantRetry, kafka.ClassifyError(err) == kafka.ErrorTypeTransient)
		})
	}
}

func TestHandle_UnknownTypeIsSkipped(t *testing.T) {
	m := &fakeMailer{}
	p := newProcessor(defaultUsers(), m)

	require.NoError(t, p.Handle(context.Background(), message(t, event("appointment.archived", model.StatusCompleted))))
	assert.Empty(t, m.sent)
}

func TestHandle_MissingEmailIsSkipped(t *testing.T) {
	users := defaultUsers()
	users.byID[patientID].Email = ""
	m := &fakeMailer{}
	p := newProcessor(users, m)

	require.NoError(t, p.Handle(context.Background(), message(t, event(events.TypeStatusChanged, model.StatusConfirmed))))
	assert.Empty(t, m.sent)
}
