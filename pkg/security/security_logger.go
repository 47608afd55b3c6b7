package security

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"go.uber.org/zap"
)

// EventType represents the type of security event
type EventType string

const (
	EventHoneypotTriggered  EventType = "honeypot_triggered"
	EventRateLimitTriggered EventType = "rate_limit_triggered"
	EventValidationFailed   EventType = "validation_failed"
	EventDeliveryFailed     EventType = "delivery_failed"
	EventLedgerUnavailable  EventType = "ledger_unavailable"
)

// SecurityEvent represents a security-related event to be logged
type SecurityEvent struct {
	Timestamp    time.Time              `json:"timestamp"`
	Service      string                 `json:"service"`
	Environment  string                 `json:"env"`
	Level        string                 `json:"level"`
	Event        EventType              `json:"event"`
	SubjectType  string                 `json:"subject_type,omitempty"`  // "email", "ip", "identity"
	SubjectValue string                 `json:"subject_value,omitempty"` // Masked or hashed for PII
	RequestID    string                 `json:"request_id,omitempty"`
	Details      map[string]interface{} `json:"details,omitempty"`
}

// SecurityLogger provides structured logging for security events
type SecurityLogger struct {
	zapLogger   *zap.Logger
	serviceName string
	environment string
	// Optional: DB persistence function
	persistFunc func(ctx context.Context, event SecurityEvent) error
}

// NewSecurityLogger wraps a zap logger for security events
func NewSecurityLogger(logger *zap.Logger, serviceName, environment string) *SecurityLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SecurityLogger{
		zapLogger:   logger.Named("security"),
		serviceName: serviceName,
		environment: environment,
	}
}

// SetPersistFunc sets the function to persist events to database
func (sl *SecurityLogger) SetPersistFunc(f func(ctx context.Context, event SecurityEvent) error) {
	sl.persistFunc = f
}

// Log logs a security event
func (sl *SecurityLogger) Log(ctx context.Context, event SecurityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	event.Service = sl.serviceName
	event.Environment = sl.environment

	severity := GetSeverity(event.Event)
	level := severity.zapLevel()
	event.Level = level.String()

	fields := []zap.Field{
		zap.String("service", event.Service),
		zap.String("env", event.Environment),
		zap.String("event", string(event.Event)),
		zap.String("severity", string(severity)),
	}
	if event.SubjectType != "" {
		fields = append(fields, zap.String("subject_type", event.SubjectType))
	}
	if event.SubjectValue != "" {
		fields = append(fields, zap.String("subject_value", event.SubjectValue))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	if len(event.Details) > 0 {
		detailsJSON, _ := json.Marshal(event.Details)
		fields = append(fields, zap.String("details", string(detailsJSON)))
	}

	sl.zapLogger.Log(level, string(event.Event), fields...)

	if sl.persistFunc != nil {
		go func(e SecurityEvent) {
			// The request context may already be canceled
			ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()

			if err := sl.persistFunc(ctx, e); err != nil {
				sl.zapLogger.Error("Failed to persist security event", zap.Error(err))
			}
		}(event)
	}
}

// LogHoneypotTriggered logs a submission caught by the hidden trap field
func (sl *SecurityLogger) LogHoneypotTriggered(ctx context.Context, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventHoneypotTriggered,
		RequestID: requestID,
	})
}

// LogRateLimitTriggered logs a submission rejected by the cooldown ledger
func (sl *SecurityLogger) LogRateLimitTriggered(ctx context.Context, identity, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventRateLimitTriggered,
		SubjectType:  identityType(identity),
		SubjectValue: maskValue(identityType(identity), identity),
		RequestID:    requestID,
	})
}

// LogValidationFailed logs the first offending field of a rejected submission
func (sl *SecurityLogger) LogValidationFailed(ctx context.Context, field, kind, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventValidationFailed,
		RequestID: requestID,
		Details:   map[string]interface{}{"field": field, "kind": kind},
	})
}

// LogDeliveryFailed logs a submission no channel could deliver
func (sl *SecurityLogger) LogDeliveryFailed(ctx context.Context, email, requestID string) {
	sl.Log(ctx, SecurityEvent{
		Event:        EventDeliveryFailed,
		SubjectType:  "email",
		SubjectValue: MaskEmail(email),
		RequestID:    requestID,
	})
}

// LogLedgerUnavailable logs a ledger backend failure; the request is let through
func (sl *SecurityLogger) LogLedgerUnavailable(ctx context.Context, requestID string, err error) {
	sl.Log(ctx, SecurityEvent{
		Event:     EventLedgerUnavailable,
		RequestID: requestID,
		Details:   map[string]interface{}{"error": err.Error()},
	})
}

// Sync flushes any buffered log entries
func (sl *SecurityLogger) Sync() error {
	return sl.zapLogger.Sync()
}

// --- Helper Functions ---

// MaskEmail masks an email for logging (e.g., "j***@example.com")
func MaskEmail(email string) string {
	if len(email) < 3 {
		return "***"
	}
	atIndex := strings.IndexByte(email, '@')
	if atIndex <= 1 {
		return "***" + email[1:]
	}
	return string(email[0]) + "***" + email[atIndex:]
}

// HashValue creates a SHA256 hash of a value (for logging without PII)
func HashValue(value string) string {
	hash := sha256.Sum256([]byte(value))
	return hex.EncodeToString(hash[:8]) // First 16 chars of hex
}

// maskValue masks a value based on its type
func maskValue(subjectType, value string) string {
	switch subjectType {
	case "email":
		return MaskEmail(value)
	case "ip":
		return value // IPs are not PII in security context
	default:
		return HashValue(value)
	}
}

// identityType guesses whether a client identity fell back to the email address
func identityType(identity string) string {
	if strings.Contains(identity, "@") {
		return "email"
	}
	return "ip"
}
