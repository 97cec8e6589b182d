package validator

import (
	"errors"
	"fmt"
	"strings"

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

type ToggleValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewToggleValidator(log *logger.Logger) *ToggleValidator {
	return &ToggleValidator{
		validate: validator.New(),
		logger:   log,
	}
}

func (v *ToggleValidator) Validate(toggle *model.SalesToggle) error {
	if toggle == nil {
		return ValidationErrors{{Field: "SalesToggle", Message: "request body is required"}}
	}
	toggle.Actor = strings.TrimSpace(toggle.Actor)

	if err := v.validate.Struct(toggle); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			return translate(validationErrs)
		}
		return err
	}
	return nil
}

func translate(errs validator.ValidationErrors) ValidationErrors {
	var out ValidationErrors
	for _, err := range errs {
		message := err.Error()
		switch err.Tag() {
		case "required":
			message = fmt.Sprintf("%s is required", err.Field())
		case "min":
			message = fmt.Sprintf("%s must be at least %s characters", err.Field(), err.Param())
		case "max":
			message = fmt.Sprintf("%s must be at most %s characters", err.Field(), err.Param())
		}
		out = append(out, ValidationError{Field: err.Field(), Message: message})
	}
	return out
}
