package notifications

import (
	"fmt"
	"strings"

	"medibook/internal/appointments/events"
	"medibook/pkg/mailer"
	"medibook/pkg/model"
)

func when(evt events.AppointmentEvent) string {
	return fmt.Sprintf("%s at %s", evt.AppointmentDate, evt.AppointmentTime)
}

func doctorLabel(evt events.AppointmentEvent) string {
	if evt.DoctorName == "" {
		return "your doctor"
	}
	return evt.DoctorName
}

func bookingReceived(to string, evt events.AppointmentEvent) mailer.Email {
	return mailer.Email{
		To:      to,
		Subject: "Appointment request received",
		Body: fmt.Sprintf(
			"Hello %s,\n\nYour appointment with %s on %s has been requested and is awaiting confirmation.\n",
			evt.PatientName, doctorLabel(evt), when(evt),
		),
	}
}

func newBookingAlert(to string, evt events.AppointmentEvent) mailer.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "A new appointment has been requested for %s.\n\n", when(evt))
	fmt.Fprintf(&b, "Patient: %s\n", evt.PatientName)
	if evt.PatientMobile != "" {
		fmt.Fprintf(&b, "Mobile: %s\n", evt.PatientMobile)
	}
	return mailer.Email{To: to, Subject: "New appointment request", Body: b.String()}
}

func statusChanged(to string, evt events.AppointmentEvent) mailer.Email {
	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s,\n\n", evt.PatientName)

	switch evt.Status {
	case model.StatusConfirmed:
		fmt.Fprintf(&b, "Your appointment with %s on %s is confirmed.\n", doctorLabel(evt), when(evt))
	case model.StatusCancelled:
		fmt.Fprintf(&b, "Your appointment with %s on %s has been cancelled.\n", doctorLabel(evt), when(evt))
	case model.StatusCompleted:
		fmt.Fprintf(&b, "Your appointment with %s on %s is complete.\n", doctorLabel(evt), when(evt))
		if evt.DoctorNotes != "" {
			fmt.Fprintf(&b, "\nDoctor's notes:\n%s\n", evt.DoctorNotes)
		}
		if evt.Prescription != "" {
			fmt.Fprintf(&b, "\nPrescription:\n%s\n", evt.Prescription)
		}
	default:
		fmt.Fprintf(&b, "Your appointment on %s is now %s.\n", when(evt), strings.ToLower(string(evt.Status)))
	}

	return mailer.Email{
		To:      to,
		Subject: fmt.Sprintf("Appointment %s", strings.ToLower(string(evt.Status))),
		Body:    b.String(),
	}
}

func reminder(to string, evt events.AppointmentEvent) mailer.Email {
	return mailer.Email{
		To:      to,
		Subject: "Appointment reminder",
		Body: fmt.Sprintf(
			"Hello %s,\n\nThis is a reminder of your appointment with %s on %s.\n",
			evt.PatientName, doctorLabel(evt), when(evt),
		),
	}
}
