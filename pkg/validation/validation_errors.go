package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to the JSON field names the form uses
var FieldLabels = map[string]string{
	"Name":    "name",
	"Email":   "email",
	"Message": "message",
}

// FieldError describes the first rule a submission violated
type FieldError struct {
	Field   string // JSON field name
	Kind    string // validator tag, e.g. "min", "mailbox"
	Param   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// FirstFieldError converts a validator error into a FieldError for the first violated field.
// Non-validation errors are returned as a FieldError with an empty Field.
func FirstFieldError(err error) *FieldError {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) || len(validationErrors) == 0 {
		return &FieldError{Kind: "invalid", Message: "Invalid input"}
	}

	e := validationErrors[0]
	return &FieldError{
		Field:   getFieldLabel(e.Field()),
		Kind:    e.Tag(),
		Param:   e.Param(),
		Message: formatSingleError(e),
	}
}

// formatSingleError formats a single validation error to a user-friendly message
func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s: is required", label)
	case "min":
		return fmt.Sprintf("%s: must be at least %s characters", label, param)
	case "max":
		return fmt.Sprintf("%s: must be at most %s characters", label, param)
	case "mailbox", "email":
		return fmt.Sprintf("%s: invalid email address", label)
	default:
		return fmt.Sprintf("%s: validation failed (%s)", label, e.Tag())
	}
}

// getFieldLabel returns the user-facing label for a field
func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return strings.ToLower(fieldName)
}
