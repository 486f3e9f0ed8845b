package events

import (
	"context"
	"fmt"
	"medibook/pkg/kafka"
	"medibook/pkg/model"
	"time"
)

// Publisher writes appointment events to Kafka, keyed by appointment ID so
// every event for one appointment lands on the same partition in order.
type Publisher struct {
	producer kafka.Publisher
	source   string
	now      func() time.Time
}

func NewPublisher(producer kafka.Publisher, source string) *Publisher {
	return &Publisher{producer: producer, source: source, now: time.Now}
}

func (p *Publisher) AppointmentCreated(ctx context.Context, appt *model.Appointment) error {
	return p.publish(ctx, NewAppointmentEvent(TypeCreated, appt, p.now()))
}

func (p *Publisher) StatusChanged(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus) error {
	event := NewAppointmentEvent(TypeStatusChanged, appt, p.now())
	event.PreviousStatus = from
	return p.publish(ctx, event)
}

// Reminders publishes one reminder per appointment in a single batch.
func (p *Publisher) Reminders(ctx context.Context, appointments []*model.Appointment) error {
	if len(appointments) == 0 {
		return nil
	}
	messages := make([]kafka.Message, 0, len(appointments))
	for _, appt := range appointments {
		msg, err := p.message(NewAppointmentEvent(TypeReminder, appt, p.now()))
		if err != nil {
			return err
		}
		messages = append(messages, msg)
	}
	if err := p.producer.PublishBatch(ctx, messages); err != nil {
		return fmt.Errorf("publish %d reminders: %w", len(messages), err)
	}
	return nil
}

func (p *Publisher) publish(ctx context.Context, event AppointmentEvent) error {
	msg, err := p.message(event)
	if err != nil {
		return err
	}
	if err := p.producer.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s for %s: %w", event.Type, event.AppointmentID, err)
	}
	return nil
}

func (p *Publisher) message(event AppointmentEvent) (kafka.Message, error) {
	return kafka.NewMessage().
		WithKey(event.AppointmentID).
		WithValue(event).
		WithEventType(event.Type).
		WithSchemaVersion(SchemaVersion).
		WithSource(p.source).
		WithTimestamp(event.OccurredAt).
		Build()
}
