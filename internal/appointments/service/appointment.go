package service

import (
	"context"
	"errors"
	"fmt"
	appterrors "medibook/internal/appointments/errors"
	"medibook/internal/appointments/lifecycle"
	"medibook/internal/appointments/repository"
	"medibook/internal/appointments/validator"
	"medibook/internal/availability"
	doctorserrors "medibook/internal/doctors/errors"
	userserrors "medibook/internal/users/errors"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/locale"
	"medibook/pkg/model"
	"medibook/pkg/sanitizer"
	"net/http"
	"sync"
	"time"
)

const slotLockReleaseTimeout = 5 * time.Second

// DoctorDirectory resolves doctor records.
type DoctorDirectory interface {
	FindByID(ctx context.Context, id string) (*model.Doctor, error)
	FindByUserID(ctx context.Context, userID string) (*model.Doctor, error)
}

// UserDirectory resolves user accounts.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// Notifier receives appointment events after they are committed. Errors are
// logged and never change the outcome of the operation that triggered them.
type Notifier interface {
	AppointmentCreated(ctx context.Context, appt *model.Appointment) error
	StatusChanged(ctx context.Context, appt *model.Appointment, from model.AppointmentStatus) error
}

type AppointmentService interface {
	Create(ctx context.Context, actor model.Actor, req *model.AppointmentRequest) (*model.Appointment, error)
	GetByID(ctx context.Context, actor model.Actor, id string) (*model.Appointment, error)
	List(ctx context.Context, actor model.Actor, filter model.AppointmentFilter) ([]*model.Appointment, int64, error)
	Update(ctx context.Context, actor model.Actor, id string, update *model.AppointmentUpdate) (*model.Appointment, error)
	SetStatus(ctx context.Context, actor model.Actor, id string, update *model.StatusUpdate) (*model.Appointment, error)
	Cancel(ctx context.Context, actor model.Actor, id string) (bool, error)
	Stats(ctx context.Context, actor model.Actor) (*model.AppointmentStats, error)

	IsSlotOffered(ctx context.Context, doctorID, date, slot string) (bool, error)
	HasConflict(ctx context.Context, doctorID, date, slot, excludeID string) (*model.Appointment, error)
	CheckSlot(ctx context.Context, doctorID, date, slot string) (*model.SlotAvailability, error)
	AvailableSlots(ctx context.Context, doctorID, date string) (*model.DaySlots, error)

	DueForReminder(ctx context.Context, date string) ([]*model.Appointment, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	lockRepo  repository.SlotLockRepository
	doctors   DoctorDirectory
	users     UserDirectory
	notifier  Notifier
	validator *validator.AppointmentValidator
	cfg       *config.Config
	loc       *time.Location
	region    string
	now       func() time.Time
}

type Option func(*appointmentService)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *appointmentService) { s.now = now }
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	lockRepo repository.SlotLockRepository,
	doctors DoctorDirectory,
	users UserDirectory,
	notifier Notifier,
	validator *validator.AppointmentValidator,
	cfg *config.Config,
	opts ...Option,
) AppointmentService {
	s := &appointmentService{
		repo:      repo,
		lockRepo:  lockRepo,
		doctors:   doctors,
		users:     users,
		notifier:  notifier,
		validator: validator,
		cfg:       cfg,
		loc:       cfg.Location(),
		region:    locale.DetectRegion(cfg.TimeZone),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *appointmentService) Create(ctx context.Context, actor model.Actor, req *model.AppointmentRequest) (*model.Appointment, error) {
	if actor.Role != model.RolePatient {
		return nil, apperrors.Forbidden("Only patients can book appointments")
	}
	s.sanitizeRequest(req)
	if err := s.validator.ValidateRequest(req); err != nil {
		return nil, s.validationError("Appointment validation failed", err)
	}

	date, err := s.bookableDate(req.AppointmentDate)
	if err != nil {
		return nil, err
	}

	doctor, err := s.activeDoctor(ctx, req.DoctorID)
	if err != nil {
		return nil, err
	}

	if err := s.ensureOffered(doctor, date, req.AppointmentTime); err != nil {
		return nil, err
	}

	appt := &model.Appointment{
		PatientID:       actor.UserID,
		DoctorID:        doctor.ID,
		AppointmentDate: req.AppointmentDate,
		AppointmentTime: req.AppointmentTime,
		Notes:           req.Notes,
		Symptoms:        req.Symptoms,
	}
	appt.SetStatus(model.StatusPending)

	err = s.withSlotLock(ctx, doctor.ID, appt.AppointmentDate, appt.AppointmentTime, func() error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if err := s.ensureFree(txCtx, doctor.ID, appt.AppointmentDate, appt.AppointmentTime, ""); err != nil {
				return err
			}
			if err := s.repo.Create(txCtx, appt); err != nil {
				return s.writeError("Failed to create appointment", err)
			}
			return nil
		})
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create appointment",
			"doctor_id", doctor.ID,
			"date", appt.AppointmentDate,
			"time", appt.AppointmentTime,
			"error", err,
		)
		return nil, s.internalUnlessApp("Failed to create appointment", err)
	}

	s.hydrate(ctx, appt, doctor)
	s.notify(appt, func(ctx context.Context, n Notifier) error {
		return n.AppointmentCreated(ctx, appt)
	})

	s.cfg.Log.Info("Appointment created successfully",
		"id", appt.ID,
		"patient_id", appt.PatientID,
		"doctor_id", appt.DoctorID,
		"date", appt.AppointmentDate,
		"time", appt.AppointmentTime,
	)
	return appt, nil
}

func (s *appointmentService) GetByID(ctx context.Context, actor model.Actor, id string) (*model.Appointment, error) {
	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, doctor, err := s.relationship(ctx, actor, appt)
	if err != nil {
		return nil, err
	}
	if decision := lifecycle.AuthorizeView(rel); !decision.Allowed() {
		return nil, denied(decision)
	}

	s.hydrate(ctx, appt, doctor)
	return appt, nil
}

func (s *appointmentService) List(ctx context.Context, actor model.Actor, filter model.AppointmentFilter) ([]*model.Appointment, int64, error) {
	scoped, empty, err := s.scopeFilter(ctx, actor, filter)
	if err != nil {
		return nil, 0, err
	}
	if empty {
		return []*model.Appointment{}, 0, nil
	}
	scoped.Limit = config.NormalizePaginationLimit(scoped.Limit)
	scoped.Offset = config.NormalizeOffset(scoped.Offset)

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx, scoped)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.Find(ctx, scoped)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments",
				"limit", scoped.Limit,
				"offset", scoped.Offset,
				"error", errFind,
			)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	s.hydrateAll(ctx, appointments)
	return appointments, count, nil
}

func (s *appointmentService) Update(ctx context.Context, actor model.Actor, id string, update *model.AppointmentUpdate) (*model.Appointment, error) {
	s.sanitizeUpdate(update)
	if err := s.validator.ValidateUpdate(update); err != nil {
		return nil, s.validationError("Invalid update input", err)
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, _, err := s.relationship(ctx, actor, existing)
	if err != nil {
		return nil, err
	}
	if decision := lifecycle.AuthorizeEdit(rel, existing.Status); !decision.Allowed() {
		return nil, denied(decision)
	}

	merged := mergeAppointmentUpdate(existing, update)
	slotChanged := merged.AppointmentDate != existing.AppointmentDate || merged.AppointmentTime != existing.AppointmentTime

	var doctor *model.Doctor
	if slotChanged {
		doctor, err = s.moveSlot(ctx, merged)
	} else {
		err = s.saveDetails(ctx, merged)
	}
	if err != nil {
		s.cfg.Log.Error("Failed to update appointment", "id", id, "error", err)
		return nil, s.internalUnlessApp("Failed to update appointment", err)
	}

	s.hydrate(ctx, merged, doctor)
	s.cfg.Log.Info("Appointment updated successfully",
		"id", merged.ID,
		"slot_changed", slotChanged,
	)
	return merged, nil
}

// moveSlot re-runs the booking checks for the new slot of appt, excluding
// appt itself from the conflict check, and saves it.
func (s *appointmentService) moveSlot(ctx context.Context, appt *model.Appointment) (*model.Doctor, error) {
	date, err := s.bookableDate(appt.AppointmentDate)
	if err != nil {
		return nil, err
	}
	doctor, err := s.activeDoctor(ctx, appt.DoctorID)
	if err != nil {
		return nil, err
	}
	if err := s.ensureOffered(doctor, date, appt.AppointmentTime); err != nil {
		return nil, err
	}

	err = s.withSlotLock(ctx, appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, func() error {
		return s.repo.ExecuteTransaction(ctx, func(txCtx context.Context) error {
			if err := s.ensureFree(txCtx, appt.DoctorID, appt.AppointmentDate, appt.AppointmentTime, appt.ID); err != nil {
				return err
			}
			return s.saveDetails(txCtx, appt)
		})
	})
	if err != nil {
		return nil, err
	}
	return doctor, nil
}

func (s *appointmentService) SetStatus(ctx context.Context, actor model.Actor, id string, update *model.StatusUpdate) (*model.Appointment, error) {
	if err := s.validator.ValidateStatusUpdate(update); err != nil {
		return nil, s.validationError("Invalid status update", err)
	}

	appt, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rel, doctor, err := s.relationship(ctx, actor, appt)
	if err != nil {
		return nil, err
	}

	from := appt.Status
	if decision := lifecycle.Authorize(rel, from, update.Status); !decision.Allowed() {
		return nil, denied(decision)
	}
	if update.HasDoctorFields() && !lifecycle.AcceptsDoctorFields(from, update.Status) {
		return nil, apperrors.Validation("Doctor notes and prescription can only be recorded on confirmed appointments", map[string]any{
			"current_status":   from,
			"requested_status": update.Status,
		})
	}

	appt.SetStatus(update.Status)
	if update.DoctorNotes != nil {
		appt.DoctorNotes = sanitizer.NormalizeText(*update.DoctorNotes)
	}
	if update.Prescription != nil {
		appt.Prescription = sanitizer.NormalizeText(*update.Prescription)
	}

	if err := s.repo.UpdateStatus(ctx, appt, from); err != nil {
		if errors.Is(err, appterrors.ErrStatusChanged) {
			s.cfg.Log.Warn("Appointment status changed during update", "id", id, "from", from, "to", update.Status)
			return nil, statusChanged(from, update.Status, "Appointment status changed while the update was in progress")
		}
		s.cfg.Log.Error("Failed to update appointment status", "id", id, "from", from, "to", update.Status, "error", err)
		return nil, s.writeError("Failed to update appointment status", err)
	}

	s.hydrate(ctx, appt, doctor)
	s.notify(appt, func(ctx context.Context, n Notifier) error {
		return n.StatusChanged(ctx, appt, from)
	})

	s.cfg.Log.Info("Appointment status updated",
		"id", appt.ID,
		"from", from,
		"to", appt.Status,
		"by", rel.String(),
	)
	return appt, nil
}

func (s *appointmentService) Cancel(ctx context.Context, actor model.Actor, id string) (bool, error) {
	if _, err := s.SetStatus(ctx, actor, id, &model.StatusUpdate{Status: model.StatusCancelled}); err != nil {
		return false, err
	}
	return true, nil
}

// DueForReminder returns the confirmed appointments on date with display
// fields filled in.
func (s *appointmentService) DueForReminder(ctx context.Context, date string) ([]*model.Appointment, error) {
	appointments, err := s.repo.FindByDateAndStatus(ctx, date, model.StatusConfirmed)
	if err != nil {
		s.cfg.Log.Error("Failed to load appointments for reminders", "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load appointments", err)
	}
	s.hydrateAll(ctx, appointments)
	return appointments, nil
}

func (s *appointmentService) Stats(ctx context.Context, actor model.Actor) (*model.AppointmentStats, error) {
	if actor.Role != model.RoleDoctor && actor.Role != model.RoleAdmin {
		return nil, apperrors.Forbidden("Only doctors and admins can view appointment statistics")
	}

	scoped, empty, err := s.scopeFilter(ctx, actor, model.AppointmentFilter{})
	if err != nil {
		return nil, err
	}
	stats := &model.AppointmentStats{}
	if empty {
		return stats, nil
	}

	now := s.now().In(s.loc)
	today := now.Format(availability.DateLayout)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc).Format(availability.DateLayout)

	todayFilter := scoped
	todayFilter.DateFrom, todayFilter.DateTo = today, today
	monthFilter := scoped
	monthFilter.DateFrom = monthStart

	var byStatus map[model.AppointmentStatus]int64
	var errStatus, errToday, errMonth error
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		byStatus, errStatus = s.repo.CountByStatus(ctx, scoped)
	}()
	go func() {
		defer wg.Done()
		stats.Today, errToday = s.repo.Count(ctx, todayFilter)
	}()
	go func() {
		defer wg.Done()
		stats.ThisMonth, errMonth = s.repo.Count(ctx, monthFilter)
	}()

	wg.Wait()
	if err := errors.Join(errStatus, errToday, errMonth); err != nil {
		s.cfg.Log.Error("Failed to compute appointment stats", "error", err)
		return nil, apperrors.Internal("Failed to compute appointment stats", err)
	}

	stats.Pending = byStatus[model.StatusPending]
	stats.Confirmed = byStatus[model.StatusConfirmed]
	stats.Completed = byStatus[model.StatusCompleted]
	stats.Cancelled = byStatus[model.StatusCancelled]
	for _, n := range byStatus {
		stats.Total += n
	}
	return stats, nil
}

// --- Helpers ---

func (s *appointmentService) load(ctx context.Context, id string) (*model.Appointment, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Appointment ID cannot be empty")
	}

	appt, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, appterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Appointment", id)
		}
		if errors.Is(err, appterrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid appointment ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve appointment", err)
	}
	return appt, nil
}

// relationship resolves how actor relates to appt. The doctor record is
// returned when it was needed for the decision so callers can reuse it.
func (s *appointmentService) relationship(ctx context.Context, actor model.Actor, appt *model.Appointment) (lifecycle.Relationship, *model.Doctor, error) {
	if actor.Role != model.RoleDoctor {
		return lifecycle.RelationshipOf(actor, appt, ""), nil, nil
	}

	doctor, err := s.doctors.FindByID(ctx, appt.DoctorID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) || errors.Is(err, doctorserrors.ErrInvalidID) {
			return lifecycle.Unrelated, nil, nil
		}
		return lifecycle.Unrelated, nil, apperrors.Internal("Failed to resolve doctor", err)
	}
	return lifecycle.RelationshipOf(actor, appt, doctor.UserID), doctor, nil
}

// scopeFilter narrows filter to what actor may see. empty is true when the
// actor can see nothing, e.g. a doctor account without a doctor profile.
func (s *appointmentService) scopeFilter(ctx context.Context, actor model.Actor, filter model.AppointmentFilter) (model.AppointmentFilter, bool, error) {
	switch actor.Role {
	case model.RoleAdmin:
		return filter, false, nil
	case model.RolePatient:
		filter.PatientID = actor.UserID
		return filter, false, nil
	case model.RoleDoctor:
		doctor, err := s.doctors.FindByUserID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, doctorserrors.ErrNotFound) {
				return filter, true, nil
			}
			return filter, false, apperrors.Internal("Failed to resolve doctor", err)
		}
		filter.DoctorID = doctor.ID
		return filter, false, nil
	default:
		return filter, false, apperrors.Forbidden("Unknown role")
	}
}

// activeDoctor resolves a bookable doctor: the record must exist and its user
// account must be active.
func (s *appointmentService) activeDoctor(ctx context.Context, doctorID string) (*model.Doctor, error) {
	doctor, err := s.doctors.FindByID(ctx, doctorID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) || errors.Is(err, doctorserrors.ErrInvalidID) {
			return nil, errDoctorUnavailable()
		}
		return nil, apperrors.Internal("Failed to resolve doctor", err)
	}

	user, err := s.users.FindByID(ctx, doctor.UserID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) || errors.Is(err, userserrors.ErrInvalidID) {
			return nil, errDoctorUnavailable()
		}
		return nil, apperrors.Internal("Failed to resolve doctor account", err)
	}
	if !user.IsActive {
		return nil, errDoctorUnavailable()
	}
	return doctor, nil
}

// bookableDate parses date and rejects days before today or past the booking
// horizon.
func (s *appointmentService) bookableDate(date string) (time.Time, error) {
	d, err := s.parseDate(date)
	if err != nil {
		return time.Time{}, err
	}

	today := availability.Today(s.now(), s.loc)
	if date < today {
		return time.Time{}, apperrors.Validation("Cannot book appointments for past dates", map[string]any{
			"appointment_date": date,
			"today":            today,
		})
	}

	if s.cfg.BookingHorizonDays > 0 {
		todayDate, _ := availability.ParseDate(today, s.loc)
		limit := todayDate.AddDate(0, 0, s.cfg.BookingHorizonDays)
		if d.After(limit) {
			return time.Time{}, apperrors.Validation(
				fmt.Sprintf("Cannot book appointments more than %d days in advance", s.cfg.BookingHorizonDays),
				map[string]any{"appointment_date": date, "latest_date": limit.Format(availability.DateLayout)},
			)
		}
	}
	return d, nil
}

func (s *appointmentService) withSlotLock(ctx context.Context, doctorID, date, slot string, fn func() error) error {
	lock := &model.SlotLock{
		ID:        repository.SlotLockID(doctorID, date, slot),
		ExpiresAt: s.now().UTC().Add(s.cfg.SlotLockTTL),
	}
	if err := s.lockRepo.Acquire(ctx, lock); err != nil {
		if errors.Is(err, appterrors.ErrSlotLocked) {
			return apperrors.TimeSlotConflict("This time slot is currently being booked by another request. Please try again.")
		}
		return apperrors.Internal("Failed to acquire slot lock", err)
	}
	defer func() {
		// the request may already be cancelled; the lock must still go
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), slotLockReleaseTimeout)
		defer cancel()
		if err := s.lockRepo.Release(releaseCtx, lock.ID); err != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lock.ID, "error", err)
		}
	}()

	return fn()
}

func (s *appointmentService) saveDetails(ctx context.Context, appt *model.Appointment) error {
	if err := s.repo.UpdateDetails(ctx, appt); err != nil {
		if errors.Is(err, appterrors.ErrStatusChanged) {
			return statusChanged(appt.Status, appt.Status, "Only pending appointments can be updated")
		}
		return s.writeError("Failed to update appointment", err)
	}
	return nil
}

// writeError maps repository write failures onto AppErrors.
func (s *appointmentService) writeError(message string, err error) error {
	switch {
	case errors.Is(err, appterrors.ErrSlotTaken):
		return apperrors.TimeSlotConflict("This time slot is already booked")
	case errors.Is(err, appterrors.ErrNotFound):
		return apperrors.NotFound("Appointment")
	default:
		return apperrors.Internal(message, err)
	}
}

func (s *appointmentService) internalUnlessApp(message string, err error) error {
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal(message, err)
}

func (s *appointmentService) validationError(message string, err error) error {
	s.cfg.Log.Warn(message, "error", err)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		return apperrors.Validation(message, fieldErrs.Details())
	}
	return apperrors.Validation(message, map[string]any{"error": err.Error()})
}

// notify hands an event to the notifier without blocking the caller. The
// request context may already be done by the time it runs.
func (s *appointmentService) notify(appt *model.Appointment, send func(context.Context, Notifier) error) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.NotificationTimeout)
		defer cancel()
		if err := send(ctx, s.notifier); err != nil {
			s.cfg.Log.Warn("Failed to publish appointment notification",
				"id", appt.ID,
				"status", appt.Status,
				"error", err,
			)
		}
	}()
}

func (s *appointmentService) sanitizeRequest(req *model.AppointmentRequest) {
	req.Notes = sanitizer.NormalizeText(req.Notes)
	req.Symptoms = sanitizer.NormalizeText(req.Symptoms)
}

func (s *appointmentService) sanitizeUpdate(u *model.AppointmentUpdate) {
	if u.Notes != nil {
		notes := sanitizer.NormalizeText(*u.Notes)
		u.Notes = &notes
	}
	if u.Symptoms != nil {
		symptoms := sanitizer.NormalizeText(*u.Symptoms)
		u.Symptoms = &symptoms
	}
}

func mergeAppointmentUpdate(existing *model.Appointment, update *model.AppointmentUpdate) *model.Appointment {
	merged := *existing

	if update.AppointmentDate != nil {
		merged.AppointmentDate = *update.AppointmentDate
	}
	if update.AppointmentTime != nil {
		merged.AppointmentTime = *update.AppointmentTime
	}
	if update.Notes != nil {
		merged.Notes = *update.Notes
	}
	if update.Symptoms != nil {
		merged.Symptoms = *update.Symptoms
	}

	return &merged
}

func denied(d lifecycle.Decision) error {
	if d.Outcome == lifecycle.DeniedInvalidTransition {
		err := apperrors.InvalidStateTransition(string(d.From), string(d.To))
		err.Message = d.Reason
		return err
	}
	return apperrors.Forbidden(d.Reason)
}

func statusChanged(from, to model.AppointmentStatus, message string) error {
	err := apperrors.InvalidStateTransition(string(from), string(to))
	err.Message = message
	return err
}

func errDoctorUnavailable() error {
	return apperrors.New(apperrors.CodeNotFound, "Doctor not found or inactive", http.StatusNotFound)
}
