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
	if len(v) == 0 {
		return ""
	}
	var messages []string
	for _, err := range v {
		messages = append(messages, err.Error())
	}
	return fmt.Sprintf("validation failed: %d error(s): [%s]", len(v), strings.Join(messages, "; "))
}

// Details flattens the errors into a field -> message map for API responses.
func (v ValidationErrors) Details() map[string]any {
	details := make(map[string]any, len(v))
	for _, err := range v {
		details[err.Field] = err.Message
	}
	return details
}

type AppointmentValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewAppointmentValidator(log *logger.Logger) *AppointmentValidator {
	v := validator.New()

	if err := v.RegisterValidation("slotformat", validateSlotFormat); err != nil {
		log.Fatal("Failed to register 'slotformat' validator", "error", err)
	}

	return &AppointmentValidator{
		validate: v,
		logger:   log,
	}
}

func validateSlotFormat(fl validator.FieldLevel) bool {
	_, err := availability.ParseSlotFormat(fl.Field().String())
	return err == nil
}

func (v *AppointmentValidator) ValidateRequest(req *model.AppointmentRequest) error {
	return v.validateStruct(req)
}

func (v *AppointmentValidator) ValidateUpdate(update *model.AppointmentUpdate) error {
	if err := v.validateStruct(update); err != nil {
		return err
	}
	if update.Empty() {
		return ValidationErrors{{Field: "body", Message: "at least one field must be provided"}}
	}
	return nil
}

func (v *AppointmentValidator) ValidateStatusUpdate(update *model.StatusUpdate) error {
	return v.validateStruct(update)
}

func (v *AppointmentValidator) validateStruct(s any) error {
	if err := v.validate.Struct(s); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		case "mongodb":
			message = fmt.Sprintf("%s must be a valid MongoDB ObjectID", err.Field())
		case "datetime":
			message = fmt.Sprintf("%s must be a date in YYYY-MM-DD format", err.Field())
		case "slotformat":
			message = fmt.Sprintf("%s must be in format HH:MM-HH:MM with start before end, got %q", err.Field(), err.Value())
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
