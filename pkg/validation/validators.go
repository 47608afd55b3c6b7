package validation

import (
	"regexp"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// local-part "@" domain with at least one dot in the domain, no whitespace anywhere
	mailboxRegex = regexp.MustCompile(`^[^\s@]+@[^\s@.]+(\.[^\s@.]+)+$`)
)

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("mailbox", Mailbox)
}

// Mailbox validates a contact address against a permissive address grammar.
// The address is expected to be trimmed and lowercased already.
func Mailbox(fl validator.FieldLevel) bool {
	return mailboxRegex.MatchString(fl.Field().String())
}
