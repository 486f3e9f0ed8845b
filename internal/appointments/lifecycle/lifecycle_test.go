package lifecycle

import (
	"testing"

	"medibook/pkg/model"
)

var allStatuses = []model.AppointmentStatus{
	model.StatusPending,
	model.StatusConfirmed,
	model.StatusCompleted,
	model.StatusCancelled,
}

func TestAuthorize_TransitionTable(t *testing.T) {
	tests := []struct {
		name string
		rel  Relationship
		from model.AppointmentStatus
		to   model.AppointmentStatus
		want Outcome
	}{
		{"doctor confirms pending", OwningDoctor, model.StatusPending, model.StatusConfirmed, Allowed},
		{"admin confirms pending", Administrator, model.StatusPending, model.StatusConfirmed, Allowed},
		{"patient cannot confirm", OwningPatient, model.StatusPending, model.StatusConfirmed, DeniedForbidden},
		{"doctor completes confirmed", OwningDoctor, model.StatusConfirmed, model.StatusCompleted, Allowed},
		{"patient cannot complete", OwningPatient, model.StatusConfirmed, model.StatusCompleted, DeniedForbidden},
		{"patient cancels pending", OwningPatient, model.StatusPending, model.StatusCancelled, Allowed},
		{"doctor cancels pending", OwningDoctor, model.StatusPending, model.StatusCancelled, Allowed},
		{"doctor cancels confirmed", OwningDoctor, model.StatusConfirmed, model.StatusCancelled, Allowed},
		{"patient cannot cancel confirmed", OwningPatient, model.StatusConfirmed, model.StatusCancelled, DeniedForbidden},
		{"pending cannot skip to completed", Administrator, model.StatusPending, model.StatusCompleted, DeniedInvalidTransition},
		{"confirmed cannot go back", OwningDoctor, model.StatusConfirmed, model.StatusPending, DeniedInvalidTransition},
		{"completed is terminal", Administrator, model.StatusCompleted, model.StatusCancelled, DeniedInvalidTransition},
		{"cancelled is terminal", Administrator, model.StatusCancelled, model.StatusPending, DeniedInvalidTransition},
		{"unrelated is forbidden before legality", Unrelated, model.StatusCompleted, model.StatusCancelled, DeniedForbidden},
		{"unrelated on legal edge", Unrelated, model.StatusPending, model.StatusCancelled, DeniedForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authorize(tt.rel, tt.from, tt.to)
			if got.Outcome != tt.want {
				t.Errorf("Authorize(%s, %s -> %s) = %v (%s), want %v", tt.rel, tt.from, tt.to, got.Outcome, got.Reason, tt.want)
			}
			if !got.Allowed() && got.Reason == "" {
				t.Errorf("denied decision should carry a reason")
			}
		})
	}
}

func TestAuthorize_TerminalStatesRejectEverything(t *testing.T) {
	for _, from := range []model.AppointmentStatus{model.StatusCompleted, model.StatusCancelled} {
		for _, to := range allStatuses {
			if d := Authorize(Administrator, from, to); d.Outcome != DeniedInvalidTransition {
				t.Errorf("%s -> %s should be an invalid transition, got %v", from, to, d.Outcome)
			}
		}
	}
}

func TestCanTransition(t *testing.T) {
	legal := 0
	for _, from := range allStatuses {
		for _, to := range allStatuses {
			if CanTransition(from, to) {
				legal++
			}
		}
	}
	if legal != 4 {
		t.Errorf("expected exactly 4 legal edges, got %d", legal)
	}
}

func TestAuthorizeEdit(t *testing.T) {
	tests := []struct {
		name    string
		rel     Relationship
		current model.AppointmentStatus
		want    Outcome
	}{
		{"owner edits pending", OwningPatient, model.StatusPending, Allowed},
		{"owner edits confirmed", OwningPatient, model.StatusConfirmed, DeniedInvalidTransition},
		{"owner edits cancelled", OwningPatient, model.StatusCancelled, DeniedInvalidTransition},
		{"doctor cannot edit", OwningDoctor, model.StatusPending, DeniedForbidden},
		{"admin cannot edit", Administrator, model.StatusPending, DeniedForbidden},
		{"stranger cannot edit", Unrelated, model.StatusPending, DeniedForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AuthorizeEdit(tt.rel, tt.current); got.Outcome != tt.want {
				t.Errorf("AuthorizeEdit(%s, %s) = %v, want %v", tt.rel, tt.current, got.Outcome, tt.want)
			}
		})
	}
}

func TestRelationshipOf(t *testing.T) {
	appt := &model.Appointment{PatientID: "p1", DoctorID: "d1"}

	tests := []struct {
		name  string
		actor model.Actor
		want  Relationship
	}{
		{"owning patient", model.Actor{UserID: "p1", Role: model.RolePatient}, OwningPatient},
		{"other patient", model.Actor{UserID: "p2", Role: model.RolePatient}, Unrelated},
		{"owning doctor", model.Actor{UserID: "u-doc", Role: model.RoleDoctor}, OwningDoctor},
		{"other doctor", model.Actor{UserID: "u-other", Role: model.RoleDoctor}, Unrelated},
		{"admin", model.Actor{UserID: "a1", Role: model.RoleAdmin}, Administrator},
		{"patient id reused by doctor role", model.Actor{UserID: "p1", Role: model.RoleDoctor}, Unrelated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RelationshipOf(tt.actor, appt, "u-doc"); got != tt.want {
				t.Errorf("RelationshipOf() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestAcceptsDoctorFields(t *testing.T) {
	if AcceptsDoctorFields(model.StatusPending, model.StatusCancelled) {
		t.Errorf("cancelling a pending appointment should not accept doctor notes")
	}
	if !AcceptsDoctorFields(model.StatusPending, model.StatusConfirmed) {
		t.Errorf("confirming should accept doctor notes")
	}
	if !AcceptsDoctorFields(model.StatusConfirmed, model.StatusCancelled) {
		t.Errorf("cancelling a confirmed appointment should accept doctor notes")
	}
}
