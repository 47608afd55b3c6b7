package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"portfolio-contact/internal/domain"
	"portfolio-contact/pkg/metrics"
	"portfolio-contact/pkg/security"
	"portfolio-contact/pkg/validation"
)

type contactUsecase struct {
	validator      *validation.ContactValidator
	abuseFilter    *security.AbuseFilter
	dispatcher     domain.ContactDispatcher
	securityLogger *security.SecurityLogger
	logger         *zap.Logger
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(
	validator *validation.ContactValidator,
	abuseFilter *security.AbuseFilter,
	dispatcher domain.ContactDispatcher,
	securityLogger *security.SecurityLogger,
	logger *zap.Logger,
) domain.ContactUsecase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if securityLogger == nil {
		securityLogger = security.NewSecurityLogger(logger, "", "")
	}
	return &contactUsecase{
		validator:      validator,
		abuseFilter:    abuseFilter,
		dispatcher:     dispatcher,
		securityLogger: securityLogger,
		logger:         logger.Named("contact"),
	}
}

// Submit runs honeypot, validation, rate limiting and delivery in that order
func (uc *contactUsecase) Submit(ctx context.Context, req *domain.ContactRequest, origin domain.RequestOrigin) (result domain.ContactResult) {
	requestID := domain.RequestIDFrom(ctx)
	label := "send_failed"

	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("Contact submission panicked",
				zap.String("panic", fmt.Sprint(r)),
				zap.String("request_id", requestID),
			)
			result = domain.Failed(domain.ErrorKeySendFailed)
			label = "send_failed"
		}
		metrics.Submissions.WithLabelValues(label).Inc()
	}()

	if req != nil && uc.abuseFilter.IsBot(ctx, req.Honeypot) {
		// The bot sees the same verdict as a real sender
		label = "honeypot"
		return domain.Succeeded()
	}

	sub, err := uc.validator.Validate(req)
	if err != nil {
		field, kind := "", "invalid"
		var fieldErr *validation.FieldError
		if errors.As(err, &fieldErr) {
			field, kind = fieldErr.Field, fieldErr.Kind
		}
		uc.securityLogger.LogValidationFailed(ctx, field, kind, requestID)
		label = "invalid"
		return domain.Failed(domain.ErrorKeyInvalid)
	}

	identity := security.ClientIdentity(origin, sub.Email)
	if !uc.abuseFilter.Allow(ctx, identity) {
		label = "rate_limited"
		return domain.Failed(domain.ErrorKeyRateLimit)
	}

	if !uc.dispatcher.Dispatch(ctx, *sub) {
		uc.securityLogger.LogDeliveryFailed(ctx, sub.Email, requestID)
		return domain.Failed(domain.ErrorKeySendFailed)
	}

	uc.logger.Info("Contact submission accepted",
		zap.String("from", security.MaskEmail(sub.Email)),
		zap.String("request_id", requestID),
	)
	label = "success"
	return domain.Succeeded()
}
