package validation

import (
	"strings"

	"github.com/go-playground/validator/v10"

	"portfolio-contact/internal/domain"
)

// contactForm is the shape checked by the validator. Name and Message are
// checked raw; trimming happens afterwards and only shapes the stored value.
type contactForm struct {
	Name    string `validate:"min=2,max=100"`
	Email   string `validate:"required,max=254,mailbox"`
	Message string `validate:"min=10,max=2000"`
}

// ContactValidator validates and normalizes contact submissions
type ContactValidator struct {
	validate *validator.Validate
}

// NewContactValidator creates a validator with the custom rules registered
func NewContactValidator() *ContactValidator {
	v := validator.New()
	RegisterValidators(v)
	return &ContactValidator{validate: v}
}

// Validate checks the raw request and returns the normalized submission.
// On failure the error is a *FieldError for the first violated field.
func (cv *ContactValidator) Validate(req *domain.ContactRequest) (*domain.ContactSubmission, error) {
	if req == nil {
		return nil, &FieldError{Kind: "required", Message: "Invalid input"}
	}

	form := contactForm{
		Name:    req.Name,
		Email:   NormalizeEmail(req.Email),
		Message: req.Message,
	}

	if err := cv.validate.Struct(form); err != nil {
		return nil, FirstFieldError(err)
	}

	return &domain.ContactSubmission{
		Name:    strings.TrimSpace(form.Name),
		Email:   form.Email,
		Message: strings.TrimSpace(form.Message),
	}, nil
}

// NormalizeEmail trims and lowercases an address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
