package service

import (
	"context"
	"errors"
	"fmt"
	appterrors "medibook/internal/appointments/errors"
	"medibook/internal/availability"
	doctorserrors "medibook/internal/doctors/errors"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/model"
	"time"
)

// IsSlotOffered reports whether slot appears verbatim in the doctor's template
// under the weekday of date.
func (s *appointmentService) IsSlotOffered(ctx context.Context, doctorID, date, slot string) (bool, error) {
	doctor, err := s.findDoctor(ctx, doctorID)
	if err != nil {
		return false, err
	}
	d, err := s.parseDate(date)
	if err != nil {
		return false, err
	}
	return doctor.AvailableTimeslots.OffersOn(d, slot), nil
}

// HasConflict returns the active appointment holding the slot, ignoring
// excludeID. It returns nil when the slot is free.
func (s *appointmentService) HasConflict(ctx context.Context, doctorID, date, slot, excludeID string) (*model.Appointment, error) {
	existing, err := s.repo.FindActiveBySlot(ctx, doctorID, date, slot, excludeID)
	if err != nil {
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Internal("Failed to check existing appointments", err)
	}
	return existing, nil
}

// CheckSlot combines the offering and conflict checks for one slot. Offering
// is checked first so a probe for an unoffered slot reveals nothing about
// bookings.
func (s *appointmentService) CheckSlot(ctx context.Context, doctorID, date, slot string) (*model.SlotAvailability, error) {
	result := &model.SlotAvailability{
		DoctorID:        doctorID,
		AppointmentDate: date,
		AppointmentTime: slot,
	}

	offered, err := s.IsSlotOffered(ctx, doctorID, date, slot)
	if err != nil {
		return nil, err
	}
	result.Offered = offered
	if !offered || date < availability.Today(s.now(), s.loc) {
		return result, nil
	}

	existing, err := s.HasConflict(ctx, doctorID, date, slot, "")
	if err != nil {
		return nil, err
	}
	result.Available = existing == nil
	return result, nil
}

// AvailableSlots lists the template slots for date that no active appointment
// holds, in template order. Past dates have none.
func (s *appointmentService) AvailableSlots(ctx context.Context, doctorID, date string) (*model.DaySlots, error) {
	doctor, err := s.findDoctor(ctx, doctorID)
	if err != nil {
		return nil, err
	}
	d, err := s.parseDate(date)
	if err != nil {
		return nil, err
	}

	weekday := availability.WeekdayOf(d)
	result := &model.DaySlots{
		DoctorID:        doctor.ID,
		AppointmentDate: date,
		Weekday:         string(weekday),
		Slots:           []string{},
	}
	if date < availability.Today(s.now(), s.loc) {
		return result, nil
	}

	offered := doctor.AvailableTimeslots.SlotsFor(weekday)
	if len(offered) == 0 {
		return result, nil
	}

	booked, err := s.repo.FindActiveByDoctorAndDate(ctx, doctor.ID, date)
	if err != nil {
		s.cfg.Log.Error("Failed to load booked slots", "doctor_id", doctor.ID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load booked slots", err)
	}
	taken := make(map[string]struct{}, len(booked))
	for _, appt := range booked {
		taken[appt.AppointmentTime] = struct{}{}
	}

	for _, slot := range offered {
		if _, ok := taken[slot]; !ok {
			result.Slots = append(result.Slots, slot)
		}
	}
	return result, nil
}

func (s *appointmentService) ensureOffered(doctor *model.Doctor, date time.Time, slot string) error {
	if doctor.AvailableTimeslots.OffersOn(date, slot) {
		return nil
	}
	return apperrors.TimeSlotUnavailable(fmt.Sprintf(
		"Doctor is not available at %s on %s",
		slot,
		availability.WeekdayOf(date).Title(),
	))
}

func (s *appointmentService) ensureFree(ctx context.Context, doctorID, date, slot, excludeID string) error {
	existing, err := s.HasConflict(ctx, doctorID, date, slot, excludeID)
	if err != nil {
		return err
	}
	if existing != nil {
		return apperrors.TimeSlotConflict("This time slot is already booked").WithDetails(map[string]any{
			"doctor_id":        doctorID,
			"appointment_date": date,
			"appointment_time": slot,
		})
	}
	return nil
}

func (s *appointmentService) findDoctor(ctx context.Context, doctorID string) (*model.Doctor, error) {
	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Doctor", doctorID)
		}
		if errors.Is(err, doctorserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid doctor ID format")
		}
		return nil, apperrors.Internal("Failed to resolve doctor", err)
	}
	return doctor, nil
}

func (s *appointmentService) parseDate(date string) (time.Time, error) {
	d, err := availability.ParseDate(date, s.loc)
	if err != nil {
		return time.Time{}, apperrors.Validation("Invalid appointment date", map[string]any{"appointment_date": err.Error()})
	}
	return d, nil
}
