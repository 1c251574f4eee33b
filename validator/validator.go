package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// postalCodeRegex matches postal codes of any country.
var postalCodeRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9\s\-]{1,9}$`)

// ValidationError represents an individual validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a slice of ValidationError.
type ValidationErrors []ValidationError

// Error returns a string representation of the validation errors.
func (ve ValidationErrors) Error() string {
	var sb strings.Builder
	for i, err := range ve {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(fmt.Sprintf("%s: %s", err.Field, err.Message))
	}
	return sb.String()
}

// Validator is a wrapper around the go-playground/validator package.
type Validator struct {
	validator *validator.Validate
}

// New creates a new Validator instance.
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields with the name the frontend sent them with
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		if name == "" {
			return field.Name
		}
		return name
	})

	_ = v.RegisterValidation("postalcode", validatePostalCode)

	return &Validator{
		validator: v,
	}
}

// Validate validates a struct using the validator package. Field failures
// are returned as ValidationErrors.
func (v *Validator) Validate(s any) error {
	err := v.validator.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	validationErrors := make(ValidationErrors, 0, len(fieldErrs))
	for _, fieldErr := range fieldErrs {
		validationErrors = append(validationErrors, ValidationError{
			Field:   fieldPath(fieldErr),
			Message: getErrorMessage(fieldErr),
		})
	}
	return validationErrors
}

// fieldPath drops the top level struct name from the namespace, so that
// "Request.customer.email" is reported as "customer.email".
func fieldPath(err validator.FieldError) string {
	_, path, ok := strings.Cut(err.Namespace(), ".")
	if !ok {
		return err.Field()
	}
	return path
}

// validatePostalCode validates a postal code.
func validatePostalCode(fl validator.FieldLevel) bool {
	if fl.Field().String() == "" {
		return true
	}
	return postalCodeRegex.MatchString(fl.Field().String())
}

// getErrorMessage returns a human-readable error message for a validation error.
func getErrorMessage(err validator.FieldError) string {
	switch err.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Invalid email format"
	case "min":
		return fmt.Sprintf("Must be at least %s long", err.Param())
	case "max":
		if err.Kind() == reflect.Map || err.Kind() == reflect.Slice {
			return fmt.Sprintf("Must have at most %s entries", err.Param())
		}
		return fmt.Sprintf("Must be at most %s characters long", err.Param())
	case "url":
		return "Invalid URL format"
	case "postalcode":
		return "Invalid postal code format"
	default:
		return fmt.Sprintf("Invalid value: %s", err.Tag())
	}
}
