package model

import "time"

type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "pending"
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCompleted AppointmentStatus = "completed"
	StatusCancelled AppointmentStatus = "cancelled"
)

// ActiveStatuses are the statuses that hold a (doctor, date, time) slot.
var ActiveStatuses = []AppointmentStatus{StatusPending, StatusConfirmed}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsActive reports whether an appointment in this status occupies its slot.
func (s AppointmentStatus) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type Appointment struct {
	ID              string            `bson:"_id,omitempty" json:"id"`
	PatientID       string            `bson:"patient_id" json:"patient_id"`
	DoctorID        string            `bson:"doctor_id" json:"doctor_id"`
	AppointmentDate string            `bson:"appointment_date" json:"appointment_date"`
	AppointmentTime string            `bson:"appointment_time" json:"appointment_time"`
	Status          AppointmentStatus `bson:"status" json:"status"`
	// Active mirrors Status.IsActive and backs the unique partial slot index.
	Active       bool      `bson:"active" json:"-"`
	Notes        string    `bson:"notes,omitempty" json:"notes,omitempty"`
	Symptoms     string    `bson:"symptoms,omitempty" json:"symptoms,omitempty"`
	DoctorNotes  string    `bson:"doctor_notes,omitempty" json:"doctor_notes,omitempty"`
	Prescription string    `bson:"prescription,omitempty" json:"prescription,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`

	// Display fields, filled on read from the user and doctor directories.
	PatientName          string  `bson:"-" json:"patient_name,omitempty"`
	PatientMobile        string  `bson:"-" json:"patient_mobile,omitempty"`
	DoctorName           string  `bson:"-" json:"doctor_name,omitempty"`
	DoctorSpecialization string  `bson:"-" json:"doctor_specialization,omitempty"`
	ConsultationFee      float64 `bson:"-" json:"consultation_fee,omitempty"`
}

// SetStatus keeps Active in step with Status.
func (a *Appointment) SetStatus(s AppointmentStatus) {
	a.Status = s
	a.Active = s.IsActive()
}

type AppointmentRequest struct {
	DoctorID        string `json:"doctor_id" validate:"required,mongodb"`
	AppointmentDate string `json:"appointment_date" validate:"required,datetime=2006-01-02"`
	AppointmentTime string `json:"appointment_time" validate:"required,slotformat"`
	Notes           string `json:"notes,omitempty" validate:"max=1000"`
	Symptoms        string `json:"symptoms,omitempty" validate:"max=1000"`
}

type AppointmentUpdate struct {
	AppointmentDate *string `json:"appointment_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	AppointmentTime *string `json:"appointment_time,omitempty" validate:"omitempty,slotformat"`
	Notes           *string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	Symptoms        *string `json:"symptoms,omitempty" validate:"omitempty,max=1000"`
}

func (u *AppointmentUpdate) Empty() bool {
	return u.AppointmentDate == nil && u.AppointmentTime == nil && u.Notes == nil && u.Symptoms == nil
}

func (u *AppointmentUpdate) ChangesSlot() bool {
	return u.AppointmentDate != nil || u.AppointmentTime != nil
}

type StatusUpdate struct {
	Status       AppointmentStatus `json:"status" validate:"required,oneof=pending confirmed completed cancelled"`
	DoctorNotes  *string           `json:"doctor_notes,omitempty" validate:"omitempty,max=2000"`
	Prescription *string           `json:"prescription,omitempty" validate:"omitempty,max=2000"`
}

func (u *StatusUpdate) HasDoctorFields() bool {
	return u.DoctorNotes != nil || u.Prescription != nil
}

type AppointmentFilter struct {
	PatientID string
	DoctorID  string
	Status    AppointmentStatus
	DateFrom  string
	DateTo    string
	Limit     int
	Offset    int64
}

type AppointmentStats struct {
	Total     int64 `json:"total"`
	Pending   int64 `json:"pending"`
	Confirmed int64 `json:"confirmed"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
	Today     int64 `json:"today"`
	ThisMonth int64 `json:"this_month"`
}

// SlotAvailability answers whether a single slot can be booked.
type SlotAvailability struct {
	DoctorID        string `json:"doctor_id"`
	AppointmentDate string `json:"appointment_date"`
	AppointmentTime string `json:"appointment_time"`
	Offered         bool   `json:"offered"`
	Available       bool   `json:"available"`
}

type DaySlots struct {
	DoctorID        string   `json:"doctor_id"`
	AppointmentDate string   `json:"appointment_date"`
	Weekday         string   `json:"weekday"`
	Slots           []string `json:"slots"`
}
