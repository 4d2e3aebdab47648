package handlers

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	pkgauth "github.com/BradenHooton/family-album/pkg/auth"
)

// ValidationErrorResponse represents a validation error with field-level details
type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

var hashtagFormat = regexp.MustCompile(`^#?[\p{L}\p{N}_]{1,50}$`)

// Global validator instance (reused across all handlers)
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	v.RegisterValidation("pin", func(fl validator.FieldLevel) bool {
		return pkgauth.IsValidPINFormat(fl.Field().String())
	})
	v.RegisterValidation("phone", func(fl validator.FieldLevel) bool {
		return pkgauth.IsValidPhone(fl.Field().String())
	})
	v.RegisterValidation("hashtag", func(fl validator.FieldLevel) bool {
		return hashtagFormat.MatchString(strings.TrimSpace(fl.Field().String()))
	})

	return v
}

// ValidateRequest validates a request struct using go-playground/validator
// Returns a user-friendly error message if validation fails
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) && len(ve) > 0 {
			first := ValidationErrorResponse{
				Field:   ve[0].Field(),
				Message: formatValidationError(ve[0]),
			}
			return fmt.Errorf("validation failed: %s: %s", first.Field, first.Message)
		}
		return fmt.Errorf("validation failed: %w", err)
	}
	return nil
}

// formatValidationError converts a validator FieldError to a user-friendly message
func formatValidationError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "pin":
		return "must be 4 or 8 digits"
	case "phone":
		return fmt.Sprintf("must be a phone number with %d to %d digits", pkgauth.MinPhoneDigits, pkgauth.MaxPhoneDigits)
	case "hashtag":
		return "must be letters, digits or underscores"
	case "uuid":
		return "must be a valid id"
	case "datetime":
		return fmt.Sprintf("must be a date formatted as %s", fe.Param())
	case "min":
		return fmt.Sprintf("must have a minimum of %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must have a maximum of %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be less than or equal to %s", fe.Param())
	default:
		return fmt.Sprintf("failed validation: %s", fe.Tag())
	}
}

// parseIntParam parses and validates an integer query parameter
func parseIntParam(value string, dest *int, min, max int) error {
	n, err := strconv.Atoi(value)
	if err != nil {
		return err
	}

	if n < min || n > max {
		return errors.New("parameter out of range")
	}

	*dest = n
	return nil
}
