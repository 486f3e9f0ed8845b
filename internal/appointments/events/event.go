package events

import (
	"medibook/pkg/model"
	"time"
)

const (
	TypeCreated       = "appointment.created"
	TypeStatusChanged = "appointment.status_changed"
	TypeReminder      = "appointment.reminder"

	SchemaVersion = "1"
)

// AppointmentEvent is the payload on the appointments topic. It carries the
// display fields so consumers do not have to call back for a name.
type AppointmentEvent struct {
	Type            string                  `json:"type"`
	AppointmentID   string                  `json:"appointment_id"`
	PatientID       string                  `json:"patient_id"`
	DoctorID        string                  `json:"doctor_id"`
	AppointmentDate string                  `json:"appointment_date"`
	AppointmentTime string                  `json:"appointment_time"`
	Status          model.AppointmentStatus `json:"status"`
	PreviousStatus  model.AppointmentStatus `json:"previous_status,omitempty"`
	PatientName     string                  `json:"patient_name,omitempty"`
	PatientMobile   string                  `json:"patient_mobile,omitempty"`
	DoctorName      string                  `json:"doctor_name,omitempty"`
	Specialization  string                  `json:"specialization,omitempty"`
	DoctorNotes     string                  `json:"doctor_notes,omitempty"`
	Prescription    string                  `json:"prescription,omitempty"`
	OccurredAt      time.Time               `json:"occurred_at"`
}

func NewAppointmentEvent(eventType string, appt *model.Appointment, occurredAt time.Time) AppointmentEvent {
	return AppointmentEvent{
		Type:            eventType,
		AppointmentID:   appt.ID,
		PatientID:       appt.PatientID,
		DoctorID:        appt.DoctorID,
		AppointmentDate: appt.AppointmentDate,
		AppointmentTime: appt.AppointmentTime,
		Status:          appt.Status,
		PatientName:     appt.PatientName,
		PatientMobile:   appt.PatientMobile,
		DoctorName:      appt.DoctorName,
		Specialization:  appt.DoctorSpecialization,
		DoctorNotes:     appt.DoctorNotes,
		Prescription:    appt.Prescription,
		OccurredAt:      occurredAt.UTC(),
	}
}
