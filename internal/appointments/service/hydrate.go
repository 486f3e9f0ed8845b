package service

import (
	"context"
	"medibook/pkg/model"
	"medibook/pkg/sanitizer"
)

// hydrate fills the display fields of appt. doctor may be nil, in which case
// it is looked up. Lookup failures leave the fields empty.
func (s *appointmentService) hydrate(ctx context.Context, appt *model.Appointment, doctor *model.Doctor) {
	s.hydrateWith(ctx, appt, doctor, map[string]*model.User{})
}

func (s *appointmentService) hydrateAll(ctx context.Context, appointments []*model.Appointment) {
	users := map[string]*model.User{}
	doctors := map[string]*model.Doctor{}
	for _, appt := range appointments {
		doctor, ok := doctors[appt.DoctorID]
		if !ok {
			doctor = s.lookupDoctor(ctx, appt.DoctorID)
			doctors[appt.DoctorID] = doctor
		}
		s.hydrateWith(ctx, appt, doctor, users)
	}
}

func (s *appointmentService) hydrateWith(ctx context.Context, appt *model.Appointment, doctor *model.Doctor, users map[string]*model.User) {
	if patient := s.lookupUser(ctx, appt.PatientID, users); patient != nil {
		appt.PatientName = patient.FullName
		appt.PatientMobile = sanitizer.NormalizePhoneIn(patient.Mobile, s.region)
	}

	if doctor == nil {
		doctor = s.lookupDoctor(ctx, appt.DoctorID)
	}
	if doctor == nil {
		return
	}
	appt.DoctorSpecialization = doctor.Specialization
	appt.ConsultationFee = doctor.ConsultationFee
	if account := s.lookupUser(ctx, doctor.UserID, users); account != nil {
		appt.DoctorName = account.FullName
	}
}

func (s *appointmentService) lookupDoctor(ctx context.Context, id string) *model.Doctor {
	doctor, err := s.doctors.FindByID(ctx, id)
	if err != nil {
		s.cfg.Log.Debug("Doctor lookup for display failed", "doctor_id", id, "error", err)
		return nil
	}
	return doctor
}

func (s *appointmentService) lookupUser(ctx context.Context, id string, seen map[string]*model.User) *model.User {
	if user, ok := seen[id]; ok {
		return user
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		s.cfg.Log.Debug("User lookup for display failed", "user_id", id, "error", err)
		user = nil
	}
	seen[id] = user
	return user
}
