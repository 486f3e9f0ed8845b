package service

import (
	"context"
	"errors"
	"medibook/internal/availability"
	doctorserrors "medibook/internal/doctors/errors"
	"medibook/internal/doctors/repository"
	"medibook/internal/doctors/validator"
	userserrors "medibook/internal/users/errors"
	"medibook/pkg/config"
	apperrors "medibook/pkg/errors"
	"medibook/pkg/model"
	"medibook/pkg/sanitizer"
	"sort"
)

// UserDirectory resolves user accounts.
type UserDirectory interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type DoctorService interface {
	Register(ctx context.Context, actor model.Actor, reg *model.DoctorRegistration) (*model.DoctorProfile, error)
	GetByID(ctx context.Context, id string) (*model.DoctorProfile, error)
	GetSchedule(ctx context.Context, actor model.Actor) (availability.Template, error)
	UpdateSchedule(ctx context.Context, actor model.Actor, body []byte) (availability.Template, error)
}

type doctorService struct {
	repo      repository.DoctorRepository
	users     UserDirectory
	validator *validator.DoctorValidator
	window    availability.Window
	cfg       *config.Config
}

func NewDoctorService(
	repo repository.DoctorRepository,
	users UserDirectory,
	validator *validator.DoctorValidator,
	window availability.Window,
	cfg *config.Config,
) DoctorService {
	return &doctorService{
		repo:      repo,
		users:     users,
		validator: validator,
		window:    window,
		cfg:       cfg,
	}
}

func (s *doctorService) Register(ctx context.Context, actor model.Actor, reg *model.DoctorRegistration) (*model.DoctorProfile, error) {
	if !actor.IsAdmin() {
		return nil, apperrors.Forbidden("Only administrators can register doctors")
	}

	s.sanitize(reg)
	if err := s.validator.ValidateRegistration(reg); err != nil {
		s.cfg.Log.Warn("Doctor registration rejected", "user_id", reg.UserID, "error", err)
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			return nil, apperrors.Validation("Doctor validation failed", fieldErrs.Details())
		}
		return nil, apperrors.Validation("Doctor validation failed", map[string]any{"error": err.Error()})
	}

	account, err := s.users.FindByID(ctx, reg.UserID)
	if err != nil {
		return nil, s.mapUserError(err, reg.UserID)
	}
	if account.Role != model.RoleDoctor {
		return nil, apperrors.Validation("Doctor validation failed", map[string]any{
			"user_id": "user must have the doctor role",
		})
	}
	if !account.IsActive {
		return nil, apperrors.Validation("Doctor validation failed", map[string]any{
			"user_id": "user account is inactive",
		})
	}

	template, _ := availability.Canonical(reg.AvailableTimeslots)
	doctor := &model.Doctor{
		UserID:             reg.UserID,
		LicenseNumber:      reg.LicenseNumber,
		Specialization:     reg.Specialization,
		ExperienceYears:    reg.ExperienceYears,
		ConsultationFee:    reg.ConsultationFee,
		AvailableTimeslots: template,
		Qualification:      reg.Qualification,
		Bio:                reg.Bio,
	}

	if err := s.repo.Create(ctx, doctor); err != nil {
		if errors.Is(err, doctorserrors.ErrAlreadyRegistered) {
			return nil, apperrors.Conflict("A doctor profile already exists for this user or license number")
		}
		s.cfg.Log.Error("Failed to create doctor", "user_id", reg.UserID, "error", err)
		return nil, apperrors.Internal("Failed to register doctor", err)
	}

	s.cfg.Log.Info("Doctor registered",
		"doctor_id", doctor.ID,
		"user_id", doctor.UserID,
		"specialization", doctor.Specialization,
	)
	return profileOf(doctor, account), nil
}

func (s *doctorService) GetByID(ctx context.Context, id string) (*model.DoctorProfile, error) {
	doctor, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, s.mapDoctorError(err, id)
	}

	account, err := s.users.FindByID(ctx, doctor.UserID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Doctor", id)
		}
		return nil, apperrors.Internal("Failed to load doctor account", err)
	}
	return profileOf(doctor, account), nil
}

func (s *doctorService) GetSchedule(ctx context.Context, actor model.Actor) (availability.Template, error) {
	doctor, err := s.self(ctx, actor)
	if err != nil {
		return nil, err
	}
	if doctor.AvailableTimeslots == nil {
		return availability.Template{}, nil
	}
	return doctor.AvailableTimeslots, nil
}

// UpdateSchedule replaces the caller's weekly template with whatever survives
// cleaning. Bad entries are dropped and logged, never reported as failures.
func (s *doctorService) UpdateSchedule(ctx context.Context, actor model.Actor, body []byte) (availability.Template, error) {
	doctor, err := s.self(ctx, actor)
	if err != nil {
		return nil, err
	}

	input, err := availability.DecodeScheduleInput(body)
	if err != nil {
		return nil, apperrors.Validation("Invalid schedule", map[string]any{"error": err.Error()})
	}
	if len(input.Ignored) > 0 {
		s.cfg.Log.Warn("Ignoring non-weekday schedule keys",
			"doctor_id", doctor.ID,
			"shape", input.Shape.String(),
			"keys", input.Ignored,
		)
	}

	template, rejected := availability.Clean(input, s.window)
	for _, r := range rejected {
		s.cfg.Log.Warn("Dropping invalid time slot",
			"doctor_id", doctor.ID,
			"day", string(r.Day),
			"value", r.Value,
			"reason", r.Reason,
		)
	}

	if err := s.repo.UpdateTimeslots(ctx, doctor.ID, template); err != nil {
		return nil, s.mapDoctorError(err, doctor.ID)
	}

	s.cfg.Log.Info("Doctor schedule updated",
		"doctor_id", doctor.ID,
		"days", days(template),
		"rejected", len(rejected),
	)
	return template, nil
}

func (s *doctorService) self(ctx context.Context, actor model.Actor) (*model.Doctor, error) {
	if actor.Role != model.RoleDoctor {
		return nil, apperrors.Forbidden("Only doctors can manage their schedule")
	}
	doctor, err := s.repo.FindByUserID(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, doctorserrors.ErrNotFound) {
			return nil, apperrors.NotFound("Doctor profile")
		}
		return nil, apperrors.Internal("Failed to load doctor profile", err)
	}
	return doctor, nil
}

func (s *doctorService) sanitize(reg *model.DoctorRegistration) {
	reg.UserID = sanitizer.TrimAndNormalize(reg.UserID)
	reg.LicenseNumber = sanitizer.NormalizeLicense(reg.LicenseNumber)
	reg.Specialization = sanitizer.NormalizeSpecialization(reg.Specialization)
	reg.Qualification = sanitizer.NormalizeText(reg.Qualification)
	reg.Bio = sanitizer.NormalizeText(reg.Bio)
}

func (s *doctorService) mapDoctorError(err error, id string) error {
	switch {
	case errors.Is(err, doctorserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid doctor ID format")
	case errors.Is(err, doctorserrors.ErrNotFound):
		return apperrors.NotFoundWithID("Doctor", id)
	default:
		s.cfg.Log.Error("Doctor repository failure", "doctor_id", id, "error", err)
		return apperrors.Internal("Failed to access doctor", err)
	}
}

func (s *doctorService) mapUserError(err error, id string) error {
	switch {
	case errors.Is(err, userserrors.ErrInvalidID):
		return apperrors.InvalidInput("Invalid user ID format")
	case errors.Is(err, userserrors.ErrNotFound):
		return apperrors.NotFoundWithID("User", id)
	default:
		s.cfg.Log.Error("User lookup failed", "user_id", id, "error", err)
		return apperrors.Internal("Failed to load user", err)
	}
}

func profileOf(doctor *model.Doctor, account *model.User) *model.DoctorProfile {
	return &model.DoctorProfile{
		Doctor:   *doctor,
		FullName: account.FullName,
		Email:    account.Email,
		Mobile:   sanitizer.NormalizePhone(account.Mobile),
		IsActive: account.IsActive,
	}
}

func days(t availability.Template) []string {
	out := make([]string, 0, len(t))
	for day := range t {
		out = append(out, string(day))
	}
	sort.Strings(out)
	return out
}
