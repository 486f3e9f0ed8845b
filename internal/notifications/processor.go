package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"medibook/internal/appointments/events"
	doctorserrors "medibook/internal/doctors/errors"
	userserrors "medibook/internal/users/errors"
	"medibook/pkg/kafka"
	"medibook/pkg/logger"
	"medibook/pkg/mailer"
	"medibook/pkg/model"
)

type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type DoctorDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Doctor, error)
}

// Processor turns appointment events into emails.
type Processor struct {
	users   UserDirectory
	doctors DoctorDirectory
	mailer  mailer.Mailer
	timeout time.Duration
	log     *logger.Logger
}

const defaultSendTimeout = 10 * time.Second

func NewProcessor(users UserDirectory, doctors DoctorDirectory, m mailer.Mailer, timeout time.Duration, log *logger.Logger) *Processor {
	if timeout <= 0 {
		timeout = defaultSendTimeout
	}
	return &Processor{
		users:   users,
		doctors: doctors,
		mailer:  m,
		timeout: timeout,
		log:     log,
	}
}

// Handle is a kafka.MessageHandler. Lookup misses and bad payloads are
// permanent; store and SMTP trouble is transient.
func (p *Processor) Handle(ctx context.Context, msg kafka.Message) error {
	var evt events.AppointmentEvent
	if err := msg.DecodeValue(&evt); err != nil {
		return err
	}
	if evt.Type == "" {
		evt.Type = msg.GetEventType()
	}

	log := p.log.With("event_type", evt.Type, "appointment_id", evt.AppointmentID, "event_id", msg.GetEventID())

	switch evt.Type {
	case events.TypeCreated:
		patient, err := p.patientEmail(ctx, evt)
		if err != nil {
			return err
		}
		if err := p.send(ctx, log, bookingReceived(patient, evt)); err != nil {
			return err
		}
		doctor, err := p.doctorEmail(ctx, evt)
		if err != nil {
			return err
		}
		return p.send(ctx, log, newBookingAlert(doctor, evt))

	case events.TypeStatusChanged:
		patient, err := p.patientEmail(ctx, evt)
		if err != nil {
			return err
		}
		return p.send(ctx, log, statusChanged(patient, evt))

	case events.TypeReminder:
		patient, err := p.patientEmail(ctx, evt)
		if err != nil {
			return err
		}
		return p.send(ctx, log, reminder(patient, evt))

	default:
		log.Debug("Ignoring unknown event type")
		return nil
	}
}

func (p *Processor) send(ctx context.Context, log *logger.Logger, email mailer.Email) error {
	if email.To == "" {
		log.Warn("Recipient has no email address, skipping", "subject", email.Subject)
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.mailer.Send(ctx, email); err != nil {
		if mailer.IsTransient(err) {
			return kafka.NewTransientError("email delivery failed", err)
		}
		return kafka.NewPermanentError("email rejected", err)
	}

	log.Info("Notification sent", "subject", email.Subject)
	return nil
}

func (p *Processor) patientEmail(ctx context.Context, evt events.AppointmentEvent) (string, error) {
	user, err := p.users.FindByID(ctx, evt.PatientID)
	if err != nil {
		return "", classifyLookup("patient", evt.PatientID, err)
	}
	return user.Email, nil
}

func (p *Processor) doctorEmail(ctx context.Context, evt events.AppointmentEvent) (string, error) {
	doctor, err := p.doctors.FindByID(ctx, evt.DoctorID)
	if err != nil {
		return "", classifyLookup("doctor", evt.DoctorID, err)
	}
	user, err := p.users.FindByID(ctx, doctor.UserID)
	if err != nil {
		return "", classifyLookup("doctor account", doctor.UserID, err)
	}
	return user.Email, nil
}

func classifyLookup(what, id string, err error) error {
	msg := fmt.Sprintf("lookup %s %s", what, id)
	switch {
	case errors.Is(err, userserrors.ErrNotFound),
		errors.Is(err, userserrors.ErrInvalidID),
		errors.Is(err, doctorserrors.ErrNotFound),
		errors.Is(err, doctorserrors.ErrInvalidID):
		return kafka.NewPermanentError(msg, err)
	default:
		return kafka.NewTransientError(msg, err)
	}
}
