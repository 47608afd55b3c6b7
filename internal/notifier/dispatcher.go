package notifier

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"portfolio-contact/internal/domain"
	"portfolio-contact/pkg/security"
)

// EmailChannel delivers the owner notification and auto-reply
type EmailChannel interface {
	SendContactEmail(ctx context.Context, sub domain.ContactSubmission) domain.DeliveryOutcome
}

// ChatChannel posts the submission to a chat
type ChatChannel interface {
	IsConfigured() bool
	Notify(ctx context.Context, sub domain.ContactSubmission) domain.DeliveryOutcome
}

// DispatcherOptions configures the Dispatcher behavior.
type DispatcherOptions struct {
	// Strict requires the chat channel to actually deliver when email did not.
	Strict bool
}

// Dispatcher sends a submission through email and chat and decides the verdict.
type Dispatcher struct {
	email  EmailChannel
	chat   ChatChannel
	opts   DispatcherOptions
	logger *zap.Logger
	wg     sync.WaitGroup
}

var _ domain.ContactDispatcher = (*Dispatcher)(nil)

// NewDispatcher creates a new Dispatcher. A nil chat channel counts as not configured.
func NewDispatcher(email EmailChannel, chat ChatChannel, logger *zap.Logger, opts DispatcherOptions) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		email:  email,
		chat:   chat,
		opts:   opts,
		logger: logger.Named("dispatcher"),
	}
}

// Dispatch delivers the submission and reports whether the caller should see success.
func (d *Dispatcher) Dispatch(ctx context.Context, sub domain.ContactSubmission) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Dispatch panicked", zap.String("panic", fmt.Sprint(r)))
			ok = false
		}
	}()

	emailOutcome := d.sendEmail(ctx, sub)

	if !d.chatConfigured() {
		if emailOutcome != domain.DeliverySent {
			// Only the masked address is logged; the message body stays out of logs.
			d.logger.Warn("No chat channel configured and email not sent",
				zap.String("email_outcome", string(emailOutcome)),
				zap.String("from", security.MaskEmail(sub.Email)),
				zap.String("request_id", domain.RequestIDFrom(ctx)),
			)
		}
		return emailOutcome == domain.DeliverySent
	}

	chatDone := d.notifyDetached(ctx, sub)

	if emailOutcome == domain.DeliverySent {
		return true
	}
	if !d.opts.Strict {
		return true
	}
	return <-chatDone == domain.DeliverySent
}

// Wait blocks until all detached chat sends have completed.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) chatConfigured() bool {
	return d.chat != nil && d.chat.IsConfigured()
}

func (d *Dispatcher) sendEmail(ctx context.Context, sub domain.ContactSubmission) (outcome domain.DeliveryOutcome) {
	if d.email == nil {
		return domain.DeliveryNotConfigured
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("Email channel panicked", zap.String("panic", fmt.Sprint(r)))
			outcome = domain.DeliveryFailed
		}
	}()
	return d.email.SendContactEmail(ctx, sub)
}

// notifyDetached runs the chat send on its own goroutine, outliving the request.
// The returned channel receives the outcome exactly once.
func (d *Dispatcher) notifyDetached(ctx context.Context, sub domain.ContactSubmission) <-chan domain.DeliveryOutcome {
	done := make(chan domain.DeliveryOutcome, 1)
	detached := context.WithoutCancel(ctx)
	requestID := domain.RequestIDFrom(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		outcome := domain.DeliveryFailed
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("Chat channel panicked", zap.String("panic", fmt.Sprint(r)), zap.String("request_id", requestID))
				outcome = domain.DeliveryFailed
			}
			done <- outcome
		}()

		outcome = d.chat.Notify(detached, sub)
		if outcome != domain.DeliverySent {
			d.logger.Warn("Chat notification not delivered",
				zap.String("outcome", string(outcome)),
				zap.String("request_id", requestID),
			)
			return
		}
		d.logger.Debug("Chat notification delivered", zap.String("request_id", requestID))
	}()

	return done
}
