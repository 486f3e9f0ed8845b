// Package lifecycle holds the appointment state machine and the rules for who
// may drive each transition.
package lifecycle

import "medibook/pkg/model"

// Relationship is how an actor relates to one appointment.
type Relationship int

const (
	Unrelated Relationship = iota
	OwningPatient
	OwningDoctor
	Administrator
)

func (r Relationship) String() string {
	switch r {
	case OwningPatient:
		return "patient"
	case OwningDoctor:
		return "doctor"
	case Administrator:
		return "admin"
	default:
		return "unrelated"
	}
}

// RelationshipOf classifies actor against an appointment. doctorUserID is the
// user account behind the appointment's doctor record.
func RelationshipOf(actor model.Actor, appt *model.Appointment, doctorUserID string) Relationship {
	switch {
	case actor.Role == model.RoleAdmin:
		return Administrator
	case actor.Role == model.RolePatient && actor.UserID == appt.PatientID:
		return OwningPatient
	case actor.Role == model.RoleDoctor && doctorUserID != "" && actor.UserID == doctorUserID:
		return OwningDoctor
	default:
		return Unrelated
	}
}

// Outcome is the result of an authorization check.
type Outcome int

const (
	Allowed Outcome = iota
	DeniedForbidden
	DeniedInvalidTransition
)

type Decision struct {
	Outcome Outcome
	From    model.AppointmentStatus
	To      model.AppointmentStatus
	Reason  string
}

func (d Decision) Allowed() bool {
	return d.Outcome == Allowed
}

type edge struct {
	from model.AppointmentStatus
	to   model.AppointmentStatus
}

// transitions lists every legal edge and the relationships allowed to take it.
var transitions = map[edge][]Relationship{
	{model.StatusPending, model.StatusConfirmed}:   {OwningDoctor, Administrator},
	{model.StatusConfirmed, model.StatusCompleted}: {OwningDoctor, Administrator},
	{model.StatusPending, model.StatusCancelled}:   {OwningPatient, OwningDoctor, Administrator},
	{model.StatusConfirmed, model.StatusCancelled}: {OwningDoctor, Administrator},
}

// CanTransition reports whether from -> to is a legal edge for anyone.
func CanTransition(from, to model.AppointmentStatus) bool {
	_, ok := transitions[edge{from, to}]
	return ok
}

// Authorize decides whether rel may move an appointment from -> to.
// Checks run in order: relationship, edge legality, authority for the edge.
func Authorize(rel Relationship, from, to model.AppointmentStatus) Decision {
	d := Decision{From: from, To: to}

	if rel == Unrelated {
		d.Outcome = DeniedForbidden
		d.Reason = "You don't have permission to access this appointment"
		return d
	}

	allowed, ok := transitions[edge{from, to}]
	if !ok {
		d.Outcome = DeniedInvalidTransition
		d.Reason = invalidTransitionReason(from, to)
		return d
	}

	for _, r := range allowed {
		if r == rel {
			d.Outcome = Allowed
			return d
		}
	}

	d.Outcome = DeniedForbidden
	d.Reason = "Only the assigned doctor or an admin can move an appointment to " + string(to)
	if to == model.StatusCancelled && rel == OwningPatient {
		d.Reason = "Patients can only cancel pending appointments"
	}
	return d
}

// AuthorizeEdit decides whether rel may edit date, time, notes or symptoms.
// Only the owning patient may edit, and only while the appointment is pending.
func AuthorizeEdit(rel Relationship, current model.AppointmentStatus) Decision {
	d := Decision{From: current, To: current}

	if rel != OwningPatient {
		d.Outcome = DeniedForbidden
		d.Reason = "Only the patient who booked the appointment can edit it"
		return d
	}
	if current != model.StatusPending {
		d.Outcome = DeniedInvalidTransition
		d.Reason = "Only pending appointments can be updated"
		return d
	}

	d.Outcome = Allowed
	return d
}

// AuthorizeView decides whether rel may read an appointment.
func AuthorizeView(rel Relationship) Decision {
	if rel == Unrelated {
		return Decision{Outcome: DeniedForbidden, Reason: "You don't have permission to access this appointment"}
	}
	return Decision{Outcome: Allowed}
}

// AcceptsDoctorFields reports whether doctor_notes and prescription may be
// written while moving from -> to. They are only meaningful once the visit is
// confirmed.
func AcceptsDoctorFields(from, to model.AppointmentStatus) bool {
	return to == model.StatusConfirmed || to == model.StatusCompleted || from == model.StatusConfirmed
}

func invalidTransitionReason(from, to model.AppointmentStatus) string {
	switch {
	case to == model.StatusCancelled && from.IsTerminal():
		return "Cannot cancel completed or already cancelled appointment"
	case from == to:
		return "Appointment is already " + string(from)
	default:
		return "Cannot move appointment from " + string(from) + " to " + string(to)
	}
}
