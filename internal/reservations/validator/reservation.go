package validator

import (
	"errors"
	"fmt"
	"strings"

	"weekchain/pkg/calendar"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"

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

// IsRangeOnly reports whether the only problem is the check-in/check-out order.
func (v ValidationErrors) IsRangeOnly() bool {
	return len(v) == 1 && v[0].Field == "CheckOut" && v[0].Message == rangeMessage
}

const rangeMessage = "check_out must be after check_in"

type ReservationValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewReservationValidator(log *logger.Logger) *ReservationValidator {
	v := validator.New()

	if err := v.RegisterValidation("required_date", validateRequiredDate); err != nil {
		log.Fatal("Failed to register 'required_date' validator",
			"error", err,
		)
	}

	log.Debug("Reservation validator initialized successfully")

	return &ReservationValidator{
		validate: v,
		logger:   log,
	}
}

func validateRequiredDate(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(calendar.Date)
	return ok && !d.IsZero()
}

func (v *ReservationValidator) Validate(commit *model.ReservationCommit) error {
	if err := v.validate.Struct(commit); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translateValidationErrors(validationErrs)
		}
		return err
	}

	if !commit.Range().Valid() {
		return ValidationErrors{{Field: "CheckOut", Message: rangeMessage}}
	}
	return nil
}

func translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
	var validationErrors ValidationErrors

	for _, err := range errs {
		message := err.Error()

		switch err.Tag() {
		case "required", "required_date":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
