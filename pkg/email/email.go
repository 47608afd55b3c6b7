package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
	"go.uber.org/zap"

	"portfolio-contact/config"
	"portfolio-contact/internal/domain"
	"portfolio-contact/pkg/metrics"
)

const maxSubjectLength = 200

// Options holds the addressing used for contact emails
type Options struct {
	FromName     string
	FromAddress  string
	ToAddress    string // Site owner inbox
	ReplyContact string // Address advertised in the auto-reply
}

// EmailService composes contact emails and hands them to a Transport
type EmailService struct {
	transport Transport
	opts      Options
	logger    *zap.Logger
}

// NewEmailService creates an email service from configuration. When SMTP is
// not fully configured the service reports DeliveryNotConfigured on every send.
func NewEmailService(cfg *config.Config, logger *zap.Logger) *EmailService {
	var transport Transport
	if cfg.SMTPConfigured() {
		transport = NewSMTPTransport(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	}
	return NewEmailServiceWithTransport(Options{
		FromName:     cfg.MailFromName,
		FromAddress:  cfg.MailFrom,
		ToAddress:    cfg.MailTo,
		ReplyContact: cfg.ContactReplyEmail,
	}, transport, logger)
}

// NewEmailServiceWithTransport creates an email service over an explicit transport.
// A nil transport disables the channel.
func NewEmailServiceWithTransport(opts Options, transport Transport, logger *zap.Logger) *EmailService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ReplyContact == "" {
		opts.ReplyContact = opts.ToAddress
	}
	return &EmailService{
		transport: transport,
		opts:      opts,
		logger:    logger.Named("mail"),
	}
}

// IsConfigured checks if the email service has a transport and addresses to use
func (s *EmailService) IsConfigured() bool {
	return s.transport != nil && s.opts.FromAddress != "" && s.opts.ToAddress != ""
}

// SendContactEmail sends the owner notification and a best-effort auto-reply.
// Only the notification decides the outcome.
func (s *EmailService) SendContactEmail(ctx context.Context, sub domain.ContactSubmission) domain.DeliveryOutcome {
	if !s.IsConfigured() {
		s.logger.Warn("SMTP not configured, skipping email delivery")
		metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelEmail, string(domain.DeliveryNotConfigured)).Inc()
		return domain.DeliveryNotConfigured
	}

	start := time.Now()
	err := s.sendNotification(ctx, sub)
	metrics.ChannelDuration.WithLabelValues(metrics.ChannelEmail).Observe(time.Since(start).Seconds())
	if err != nil {
		s.logger.Error("Failed to send notification", zap.Error(err))
		metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelEmail, string(domain.DeliveryFailed)).Inc()
		return domain.DeliveryFailed
	}
	metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelEmail, string(domain.DeliverySent)).Inc()

	if err := s.sendAutoReply(ctx, sub); err != nil {
		s.logger.Warn("Auto-reply failed (non-critical)", zap.Error(err))
		metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelAutoReply, string(domain.DeliveryFailed)).Inc()
	} else {
		metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelAutoReply, string(domain.DeliverySent)).Inc()
	}

	return domain.DeliverySent
}

func (s *EmailService) sendNotification(ctx context.Context, sub domain.ContactSubmission) error {
	var body bytes.Buffer
	if err := notificationTemplate.Execute(&body, sub); err != nil {
		return fmt.Errorf("failed to execute notification template: %w", err)
	}

	msg, err := s.buildMessage(s.opts.ToAddress, sub.Email, SanitizeSubject("[Contact] "+sub.Name), body.Bytes())
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, s.opts.FromAddress, []string{s.opts.ToAddress}, msg); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}
	return nil
}

func (s *EmailService) sendAutoReply(ctx context.Context, sub domain.ContactSubmission) error {
	var body bytes.Buffer
	data := autoReplyData{Name: sub.Name, ReplyContact: s.opts.ReplyContact, Signature: s.opts.FromName}
	if err := autoReplyTemplate.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute auto-reply template: %w", err)
	}

	subject := "We received your message"
	if s.opts.FromName != "" {
		subject += " - " + s.opts.FromName
	}
	msg, err := s.buildMessage(sub.Email, "", subject, body.Bytes())
	if err != nil {
		return err
	}
	if err := s.transport.Send(ctx, s.opts.FromAddress, []string{sub.Email}, msg); err != nil {
		return fmt.Errorf("failed to send auto-reply: %w", err)
	}
	return nil
}

// buildMessage encodes a single-part HTML message
func (s *EmailService) buildMessage(to, replyTo, subject string, html []byte) ([]byte, error) {
	builder := enmime.Builder().
		From(s.opts.FromName, s.opts.FromAddress).
		To("", to).
		Subject(subject).
		Date(time.Now()).
		HTML(html)
	if replyTo != "" {
		builder = builder.ReplyTo("", replyTo)
	}

	part, err := builder.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build email: %w", err)
	}

	var buf bytes.Buffer
	if err := part.Encode(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode email: %w", err)
	}
	return buf.Bytes(), nil
}

// SanitizeSubject replaces control characters (CR, LF, TAB, ...) with spaces
// and caps the subject at 200 characters.
func SanitizeSubject(subject string) string {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, subject)

	if utf8.RuneCountInString(cleaned) > maxSubjectLength {
		cleaned = string([]rune(cleaned)[:maxSubjectLength])
	}
	return cleaned
}

type autoReplyData struct {
	Name         string
	ReplyContact string
	Signature    string
}

// html/template escapes & < > " ' in every interpolated value
var notificationTemplate = template.Must(template.New("notification").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>New Contact Form Submission</title></head>
<body>
<div style="font-family:system-ui,sans-serif;max-width:560px;margin:0 auto;padding:24px;">
  <h2 style="color:#f97316;margin-bottom:16px;">New Contact Form Submission</h2>
  <table style="width:100%;border-collapse:collapse;">
    <tr><td style="padding:8px 0;color:#71717a;width:80px;vertical-align:top;">Name</td><td style="padding:8px 0;font-weight:600;">{{.Name}}</td></tr>
    <tr><td style="padding:8px 0;color:#71717a;vertical-align:top;">Email</td><td style="padding:8px 0;"><a href="mailto:{{.Email}}" style="color:#f97316;">{{.Email}}</a></td></tr>
  </table>
  <div style="margin-top:16px;padding:16px;background:#18181b;border-radius:8px;color:#fafafa;white-space:pre-wrap;">{{.Message}}</div>
</div>
</body>
</html>`))

var autoReplyTemplate = template.Must(template.New("auto-reply").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>We received your message</title></head>
<body>
<div style="font-family:system-ui,sans-serif;max-width:560px;margin:0 auto;padding:24px;">
  <h2 style="color:#f97316;margin-bottom:16px;">Thank you, {{.Name}}!</h2>
  <p style="color:#a1a1aa;line-height:1.6;">We've received your message and will get back to you within 24 hours.</p>
  <p style="color:#a1a1aa;line-height:1.6;">In the meantime, feel free to reach out directly via <a href="mailto:{{.ReplyContact}}" style="color:#f97316;">{{.ReplyContact}}</a></p>
  {{if .Signature}}<p style="margin-top:24px;color:#71717a;font-size:14px;">{{.Signature}} Team</p>{{end}}
</div>
</body>
</html>`))
