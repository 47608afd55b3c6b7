package security

import (
	"context"
	"strings"

	"portfolio-contact/internal/domain"
)

// AbuseFilter combines the honeypot trap with the per-client cooldown ledger
type AbuseFilter struct {
	ledger Ledger
	logger *SecurityLogger
}

// NewAbuseFilter creates an abuse filter that owns the given ledger
func NewAbuseFilter(ledger Ledger, logger *SecurityLogger) *AbuseFilter {
	if logger == nil {
		logger = NewSecurityLogger(nil, "", "")
	}
	return &AbuseFilter{ledger: ledger, logger: logger}
}

// IsBot reports whether the hidden trap field was filled in. Callers treat a
// trapped submission as accepted so the bot learns nothing.
func (f *AbuseFilter) IsBot(ctx context.Context, honeypot string) bool {
	if honeypot == "" {
		return false
	}
	f.logger.LogHoneypotTriggered(ctx, domain.RequestIDFrom(ctx))
	return true
}

// Allow applies the cooldown for identity. Ledger failures fail open.
func (f *AbuseFilter) Allow(ctx context.Context, identity string) bool {
	allowed, err := f.ledger.Allow(ctx, identity)
	if err != nil {
		f.logger.LogLedgerUnavailable(ctx, domain.RequestIDFrom(ctx), err)
		return true
	}
	if !allowed {
		f.logger.LogRateLimitTriggered(ctx, identity, domain.RequestIDFrom(ctx))
	}
	return allowed
}

// ClientIdentity derives the rate-limit key: the first X-Forwarded-For entry,
// then X-Real-IP, then the submitter's email.
func ClientIdentity(origin domain.RequestOrigin, email string) string {
	if first, _, _ := strings.Cut(origin.ForwardedFor, ","); strings.TrimSpace(first) != "" {
		return strings.TrimSpace(first)
	}
	if realIP := strings.TrimSpace(origin.RealIP); realIP != "" {
		return realIP
	}
	return email
}
