package validator

import (
	"errors"
	"fmt"
	"medibook/internal/availability"
	"medibook/pkg/logger"
	"medibook/pkg/model"
	"strings"

	"github.com/go-playground/validator/v10"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	messages := make([]string, 0, len(v))
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

// DoctorValidator is the strict onboarding validator: every weekday key and
// every slot must be valid or the whole registration fails.
type DoctorValidator struct {
	validate *validator.Validate
	window   availability.Window
	logger   *logger.Logger
}

func NewDoctorValidator(window availability.Window, log *logger.Logger) *DoctorValidator {
	v := validator.New()
	dv := &DoctorValidator{validate: v, window: window, logger: log}

	if err := v.RegisterValidation("weekday", validateWeekday); err != nil {
		log.Fatal("Failed to register 'weekday' validator", "error", err)
	}
	if err := v.RegisterValidation("timeslot", dv.validateTimeslot); err != nil {
		log.Fatal("Failed to register 'timeslot' validator", "error", err)
	}

	return dv
}

func validateWeekday(fl validator.FieldLevel) bool {
	_, ok := availability.ParseWeekday(fl.Field().String())
	return ok
}

func (v *DoctorValidator) validateTimeslot(fl validator.FieldLevel) bool {
	_, err := availability.ParseSlot(fl.Field().String(), v.window)
	return err == nil
}

func (v *DoctorValidator) ValidateRegistration(reg *model.DoctorRegistration) error {
	if err := v.validate.Struct(reg); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translate(validationErrs)
		}
		return err
	}
	return nil
}

func (v *DoctorValidator) translate(errs validator.ValidationErrors) ValidationErrors {
	out := make(ValidationErrors, 0, len(errs))

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "gte", "lte":
			message = fmt.Sprintf("%s is out of range", err.Field())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "alphanum", "uppercase":
			message = fmt.Sprintf("%s must contain only uppercase letters and digits", err.Field())
		case "weekday":
			message = fmt.Sprintf("%q is not a day of the week", err.Value())
		case "timeslot":
			message = fmt.Sprintf("invalid time slot %q: %s", err.Value(), v.slotProblem(fmt.Sprint(err.Value())))
		}

		out = append(out, ValidationError{
			Field:   err.Namespace()[strings.Index(err.Namespace(), ".")+1:],
			Message: message,
		})
	}

	return out
}

func (v *DoctorValidator) slotProblem(raw string) string {
	if _, err := availability.ParseSlot(raw, v.window); err != nil {
		return err.Error()
	}
	return "invalid"
}
