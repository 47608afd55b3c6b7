package domain

import "context"

// Opaque error keys returned to the presentation layer, which humanizes them per locale.
const (
	ErrorKeyInvalid    = "errorInvalid"
	ErrorKeyRateLimit  = "errorRateLimit"
	ErrorKeySendFailed = "errorSendFailed"
)

// ContactRequest represents an untrusted contact form submission
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
	// Honeypot is a hidden form field that humans never fill in
	Honeypot string `json:"website,omitempty"`
}

// ContactSubmission is a validated and normalized contact request.
// It lives for the duration of one Submit call and is never persisted.
type ContactSubmission struct {
	Name    string
	Email   string
	Message string
}

// RequestOrigin carries the proxy headers used to derive the client identity
type RequestOrigin struct {
	ForwardedFor string // X-Forwarded-For
	RealIP       string // X-Real-IP
}

// ContactResult is the verdict handed back to the caller
type ContactResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// Succeeded builds a successful verdict
func Succeeded() ContactResult {
	return ContactResult{Success: true}
}

// Failed builds a failed verdict carrying an opaque error key
func Failed(key string) ContactResult {
	return ContactResult{Success: false, Error: key}
}

// DeliveryOutcome is the tagged result of one notification channel
type DeliveryOutcome string

const (
	DeliverySent          DeliveryOutcome = "sent"
	DeliveryFailed        DeliveryOutcome = "failed"
	DeliveryNotConfigured DeliveryOutcome = "not-configured"
)

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Submit validates, filters and delivers a contact submission. It never returns an error;
	// every failure is folded into the returned ContactResult.
	Submit(ctx context.Context, req *ContactRequest, origin RequestOrigin) ContactResult
}

// ContactDispatcher delivers a validated submission and reports the overall verdict
type ContactDispatcher interface {
	Dispatch(ctx context.Context, sub ContactSubmission) bool
}
