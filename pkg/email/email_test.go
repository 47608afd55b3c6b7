package email_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/jhillyerd/enmime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"portfolio-contact/config"
	"portfolio-contact/internal/domain"
	"portfolio-contact/pkg/email"
)

type MockTransport struct {
	mock.Mock
	messages [][]byte
}

func (m *MockTransport) Send(ctx context.Context, from string, to []string, msg []byte) error {
	m.messages = append(m.messages, msg)
	return m.Called(ctx, from, to).Error(0)
}

func (m *MockTransport) envelope(t *testing.T, i int) *enmime.Envelope {
	t.Helper()
	require.Greater(t, len(m.messages), i)
	env, err := enmime.ReadEnvelope(bytes.NewReader(m.messages[i]))
	require.NoError(t, err)
	return env
}

var testOptions = email.Options{
	FromName:     "Essential Hustle",
	FromAddress:  "noreply@essentialhustle.dev",
	ToAddress:    "owner@essentialhustle.dev",
	ReplyContact: "hello@essentialhustle.dev",
}

var validSubmission = domain.ContactSubmission{
	Name:    "Boris Kuznetsov",
	Email:   "boris@example.com",
	Message: "I need help setting up Docker infrastructure for production.",
}

func TestSendContactEmail_NotConfigured(t *testing.T) {
	svc := email.NewEmailServiceWithTransport(testOptions, nil, zap.NewNop())

	assert.False(t, svc.IsConfigured())
	assert.Equal(t, domain.DeliveryNotConfigured, svc.SendContactEmail(context.Background(), validSubmission))
}

func TestNewEmailService_RequiresCredentials(t *testing.T) {
	svc := email.NewEmailService(&config.Config{SMTPHost: "smtp.example.com", SMTPUsername: "user@example.com"}, nil)
	assert.False(t, svc.IsConfigured())

	svc = email.NewEmailService(&config.Config{
		SMTPHost:     "smtp.example.com",
		SMTPPort:     "587",
		SMTPUsername: "user@example.com",
		SMTPPassword: "secret-password",
		MailFrom:     "user@example.com",
		MailTo:       "user@example.com",
	}, nil)
	assert.True(t, svc.IsConfigured())
}

func TestSendContactEmail_SendsNotificationAndAutoReply(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, testOptions.FromAddress, []string{testOptions.ToAddress}).Return(nil).Once()
	transport.On("Send", mock.Anything, testOptions.FromAddress, []string{"boris@example.com"}).Return(nil).Once()
	svc := email.NewEmailServiceWithTransport(testOptions, transport, zap.NewNop())

	outcome := svc.SendContactEmail(context.Background(), validSubmission)

	assert.Equal(t, domain.DeliverySent, outcome)
	transport.AssertExpectations(t)
	require.Len(t, transport.messages, 2)

	notification := transport.envelope(t, 0)
	assert.Contains(t, notification.GetHeader("Reply-To"), "boris@example.com")
	assert.Contains(t, notification.GetHeader("To"), testOptions.ToAddress)
	assert.Contains(t, notification.GetHeader("Subject"), "Boris Kuznetsov")
	assert.Contains(t, notification.HTML, "Boris Kuznetsov")
	assert.Contains(t, notification.HTML, "boris@example.com")
	assert.Contains(t, notification.HTML, "Docker infrastructure")

	autoReply := transport.envelope(t, 1)
	assert.Contains(t, autoReply.GetHeader("Subject"), "We received your message")
	assert.Contains(t, autoReply.HTML, "Thank you, Boris Kuznetsov!")
	assert.Contains(t, autoReply.HTML, "hello@essentialhustle.dev")
}

func TestSendContactEmail_NotificationFailure(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("SMTP connection refused")).Once()
	svc := email.NewEmailServiceWithTransport(testOptions, transport, zap.NewNop())

	assert.Equal(t, domain.DeliveryFailed, svc.SendContactEmail(context.Background(), validSubmission))
	assert.Len(t, transport.messages, 1, "auto-reply is not attempted after a failed notification")
}

func TestSendContactEmail_AutoReplyFailureIsNonCritical(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, []string{testOptions.ToAddress}).Return(nil).Once()
	transport.On("Send", mock.Anything, mock.Anything, []string{"boris@example.com"}).Return(errors.New("mailbox unavailable")).Once()
	svc := email.NewEmailServiceWithTransport(testOptions, transport, zap.NewNop())

	assert.Equal(t, domain.DeliverySent, svc.SendContactEmail(context.Background(), validSubmission))
	transport.AssertExpectations(t)
}

func TestSendContactEmail_EscapesHTML(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := email.NewEmailServiceWithTransport(testOptions, transport, zap.NewNop())

	svc.SendContactEmail(context.Background(), domain.ContactSubmission{
		Name:    `<script>alert("xss")</script>`,
		Email:   "test@example.com",
		Message: `Message with <img src=x onerror=alert(1)> & more`,
	})

	html := transport.envelope(t, 0).HTML
	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.NotContains(t, html, "<img")
	assert.Contains(t, html, "&lt;img")
	assert.Contains(t, html, "&amp; more")

	assert.NotContains(t, transport.envelope(t, 1).HTML, "<script>")
}

func TestSendContactEmail_SubjectHeaderInjection(t *testing.T) {
	transport := new(MockTransport)
	transport.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	svc := email.NewEmailServiceWithTransport(testOptions, transport, zap.NewNop())

	svc.SendContactEmail(context.Background(), domain.ContactSubmission{
		Name:    "Attacker\r\nBcc: victim@example.com",
		Email:   "test@example.com",
		Message: "Header injection attempt via name field in subject.",
	})

	env := transport.envelope(t, 0)
	subject := env.GetHeader("Subject")
	assert.NotContains(t, subject, "\r")
	assert.NotContains(t, subject, "\n")
	assert.Empty(t, env.GetHeader("Bcc"))
}

func TestSanitizeSubject(t *testing.T) {
	t.Run("replaces control characters", func(t *testing.T) {
		assert.Equal(t, "[Contact] a  b c", email.SanitizeSubject("[Contact] a\r\nb\tc"))
	})

	t.Run("truncates to 200 characters", func(t *testing.T) {
		got := email.SanitizeSubject("[Contact] " + strings.Repeat("A", 250))
		assert.Equal(t, 200, utf8.RuneCountInString(got))
	})

	t.Run("counts characters not bytes", func(t *testing.T) {
		got := email.SanitizeSubject(strings.Repeat("Б", 250))
		assert.Equal(t, 200, utf8.RuneCountInString(got))
		assert.True(t, utf8.ValidString(got))
	})
}
