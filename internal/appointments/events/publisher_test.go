package events

import (
	"context"
	"errors"
	"medibook/pkg/kafka"
	"medibook/pkg/model"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProducer struct {
	published []kafka.Message
	batches   [][]kafka.Message
	err       error
}

func (f *fakeProducer) Publish(_ context.Context, msg kafka.Message) error {
	f.published = append(f.published, msg)
	return f.err
}

func (f *fakeProducer) PublishBatch(_ context.Context, messages []kafka.Message) error {
	f.batches = append(f.batches, messages)
	return f.err
}

func (f *fakeProducer) Close() error { return nil }

var fixedNow = time.Date(2025, 6, 4, 8, 30, 0, 0, time.UTC)

func newTestPublisher(producer *fakeProducer) *Publisher {
	p := NewPublisher(producer, "appointments")
	p.now = func() time.Time { return fixedNow }
	return p
}

func sampleAppointment() *model.Appointment {
	return &model.Appointment{
		ID:              "665f1c2a9b1e8a00123456ff",
		PatientID:       "665f1c2a9b1e8a0012345678",
		DoctorID:        "665f1c2a9b1e8a00123456aa",
		AppointmentDate: "2025-06-09",
		AppointmentTime: "09:00-10:00",
		Status:          model.StatusConfirmed,
		PatientName:     "Rahim Uddin",
		DoctorName:      "Dr. Nasreen Akter",
	}
}

func TestStatusChanged(t *testing.T) {
	producer := &fakeProducer{}
	p := newTestPublisher(producer)

	require.NoError(t, p.StatusChanged(context.Background(), sampleAppointment(), model.StatusPending))
	require.Len(t, producer.published, 1)

	msg := producer.published[0]
	assert.Equal(t, "665f1c2a9b1e8a00123456ff", msg.Key)
	assert.Equal(t, TypeStatusChanged, msg.GetEventType())
	assert.Equal(t, "appointments", msg.Headers[kafka.HeaderSource])
	assert.Equal(t, SchemaVersion, msg.Headers[kafka.HeaderSchemaVersion])

	var event AppointmentEvent
	require.NoError(t, msg.DecodeValue(&event))
	assert.Equal(t, model.StatusConfirmed, event.Status)
	assert.Equal(t, model.StatusPending, event.PreviousStatus)
	assert.Equal(t, "Rahim Uddin", event.PatientName)
	assert.True(t, fixedNow.Equal(event.OccurredAt))
}

func TestAppointmentCreated_WrapsProducerError(t *testing.T) {
	boom := errors.New("broker down")
	p := newTestPublisher(&fakeProducer{err: boom})

	err := p.AppointmentCreated(context.Background(), sampleAppointment())
	assert.ErrorIs(t, err, boom)
}

func TestReminders(t *testing.T) {
	producer := &fakeProducer{}
	p := newTestPublisher(producer)

	require.NoError(t, p.Reminders(context.Background(), nil))
	assert.Empty(t, producer.batches, "nothing to send means no batch")

	second := sampleAppointment()
	second.ID = "665f1c2a9b1e8a0012345700"
	require.NoError(t, p.Reminders(context.Background(), []*model.Appointment{sampleAppointment(), second}))

	require.Len(t, producer.batches, 1)
	batch := producer.batches[0]
	require.Len(t, batch, 2)
	for _, msg := range batch {
		assert.Equal(t, TypeReminder, msg.GetEventType())
	}
	assert.Equal(t, second.ID, batch[1].Key)
}
