package domain

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	requestValidator     *validator.Validate
	requestValidatorOnce sync.Once
)

// getValidator returns a validator reading the same `binding` tags gin uses,
// so service-level validation matches HTTP binding.
func getValidator() *validator.Validate {
	requestValidatorOnce.Do(func() {
		requestValidator = validator.New(validator.WithRequiredStructEnabled())
		requestValidator.SetTagName("binding")
		requestValidator.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" || name == "" {
				return field.Name
			}
			return name
		})
	})
	return requestValidator
}

// validateStruct validates s and converts the first failure into a domain validation error.
func validateStruct(s interface{}) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if errors.As(err, &fieldErrors) && len(fieldErrors) > 0 {
		fe := fieldErrors[0]
		return NewValidationError("INVALID_"+strings.ToUpper(fe.Field()), fieldMessage(fe), map[string]interface{}{
			"field": fe.Field(),
			"rule":  fe.Tag(),
		})
	}

	return NewValidationError("INVALID_REQUEST", "Invalid request", nil)
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fe.Field() + " is required"
	case "email":
		return fe.Field() + " must be a valid email address"
	case "min":
		return fe.Field() + " must be at least " + fe.Param() + " characters"
	case "max":
		return fe.Field() + " must be at most " + fe.Param() + " characters"
	default:
		return fe.Field() + " is invalid"
	}
}
