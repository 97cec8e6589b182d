package validator

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"weekchain/pkg/calendar"
	"weekchain/pkg/logger"
	"weekchain/pkg/model"

	"github.com/go-playground/validator/v10"
)

var (
	categoryRegex = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} _-]{0,39}$`)
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

type MatchValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewMatchValidator(log *logger.Logger) *MatchValidator {
	v := validator.New()

	if err := v.RegisterValidation("required_date", validateRequiredDate); err != nil {
		log.Fatal("Failed to register 'required_date' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("category", validateCategory); err != nil {
		log.Fatal("Failed to register 'category' validator",
			"error", err,
		)
	}
	if err := v.RegisterValidation("tier", validateTier); err != nil {
		log.Fatal("Failed to register 'tier' validator",
			"error", err,
		)
	}

	log.Debug("Match validator initialized successfully")

	return &MatchValidator{
		validate: v,
		logger:   log,
	}
}

func validateRequiredDate(fl validator.FieldLevel) bool {
	d, ok := fl.Field().Interface().(calendar.Date)
	return ok && !d.IsZero()
}

func validateCategory(fl validator.FieldLevel) bool {
	return categoryRegex.MatchString(fl.Field().String())
}

func validateTier(fl validator.FieldLevel) bool {
	return model.Tier(fl.Field().String()).Valid()
}

func (v *MatchValidator) Validate(req *model.MatchRequest) error {
	if err := v.validate.Struct(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}

	if !req.Range().Valid() {
		return ValidationErrors{
			ValidationError{
				Field:   "EndDate",
				Message: "end_date must be after start_date",
			},
		}
	}

	return nil
}

// ValidateUnit checks a unit before it is written to a store.
func (v *MatchValidator) ValidateUnit(unit *model.InventoryUnit) error {
	if err := v.validate.Struct(unit); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return v.translateValidationErrors(validationErrs)
		}
		return err
	}
	return nil
}

func (v *MatchValidator) translateValidationErrors(errs validator.ValidationErrors) ValidationErrors {
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
		case "oneof":
			message = fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
		case "category":
			message = fmt.Sprintf("%s must be 1-40 letters, digits, spaces, '_' or '-'", err.Field())
		case "tier":
			message = fmt.Sprintf("%s must be one of: Silver Gold Platinum Signature", err.Field())
		}

		validationErrors = append(validationErrors, ValidationError{
			Field:   err.Field(),
			Message: message,
		})
	}

	return validationErrors
}
