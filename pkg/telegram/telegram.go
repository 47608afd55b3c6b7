// Package telegram sends contact notifications through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"portfolio-contact/config"
	"portfolio-contact/internal/domain"
	"portfolio-contact/pkg/metrics"
)

const (
	defaultAPIURL      = "https://api.telegram.org"
	defaultTimeout     = 10 * time.Second
	defaultPerMinute   = 20
	maxErrorBodyLength = 512
)

var errThrottled = errors.New("telegram send throttled")

// Options holds Telegram bot configuration
type Options struct {
	BotToken  string
	ChatID    string
	APIURL    string
	PerMinute int
	Timeout   time.Duration
}

// Notifier posts contact submissions to a Telegram chat
type Notifier struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	opts       Options
	logger     *zap.Logger
}

// sendMessageRequest is the JSON body of the Bot API sendMessage method
type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

// NewNotifier creates a notifier from configuration
func NewNotifier(cfg *config.Config, logger *zap.Logger) *Notifier {
	return NewNotifierWithOptions(Options{
		BotToken:  cfg.TelegramBotToken,
		ChatID:    cfg.TelegramChatID,
		APIURL:    cfg.TelegramAPIURL,
		PerMinute: cfg.TelegramPerMin,
	}, logger)
}

// NewNotifierWithOptions creates a notifier, filling zero options with defaults
func NewNotifierWithOptions(opts Options, logger *zap.Logger) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.APIURL == "" {
		opts.APIURL = defaultAPIURL
	}
	opts.APIURL = strings.TrimRight(opts.APIURL, "/")
	if opts.PerMinute <= 0 {
		opts.PerMinute = defaultPerMinute
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	return &Notifier{
		httpClient: &http.Client{Timeout: opts.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(float64(opts.PerMinute)/60.0), opts.PerMinute),
		opts:       opts,
		logger:     logger.Named("telegram"),
	}
}

// IsConfigured reports whether both the bot token and the chat ID are present
func (n *Notifier) IsConfigured() bool {
	return n.opts.BotToken != "" && n.opts.ChatID != ""
}

// Notify sends the submission and reports the outcome. It never panics and
// never returns an error; failures are logged.
func (n *Notifier) Notify(ctx context.Context, sub domain.ContactSubmission) domain.DeliveryOutcome {
	if !n.IsConfigured() {
		n.logger.Warn("Bot not configured, skipping notification")
		metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelTelegram, string(domain.DeliveryNotConfigured)).Inc()
		return domain.DeliveryNotConfigured
	}

	start := time.Now()
	err := n.send(ctx, FormatMessage(sub))
	metrics.ChannelDuration.WithLabelValues(metrics.ChannelTelegram).Observe(time.Since(start).Seconds())
	if err != nil {
		n.logger.Error("Send failed", zap.Error(err))
		metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelTelegram, string(domain.DeliveryFailed)).Inc()
		return domain.DeliveryFailed
	}

	metrics.ChannelDeliveries.WithLabelValues(metrics.ChannelTelegram, string(domain.DeliverySent)).Inc()
	return domain.DeliverySent
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if !n.limiter.Allow() {
		return errThrottled
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                n.opts.ChatID,
		Text:                  text,
		ParseMode:             "MarkdownV2",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshal sendMessage payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", n.opts.APIURL, n.opts.BotToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return n.redact(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		// *url.Error embeds the request URL, which carries the bot token
		return n.redact(err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLength))
		return fmt.Errorf("telegram returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(detail)))
	}
	return nil
}

// redact strips the bot token from an error message
func (n *Notifier) redact(err error) error {
	if n.opts.BotToken == "" {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), n.opts.BotToken, "<redacted>"))
}

// FormatMessage renders the MarkdownV2 notification text
func FormatMessage(sub domain.ContactSubmission) string {
	return strings.Join([]string{
		"📩 *New Contact Form Submission*",
		"",
		"*Name:* " + EscapeMarkdownV2(sub.Name),
		"*Email:* " + EscapeMarkdownV2(sub.Email),
		"",
		"*Message:*",
		EscapeMarkdownV2(sub.Message),
	}, "\n")
}

var markdownV2Replacer = strings.NewReplacer(
	`_`, `\_`, `*`, `\*`, `[`, `\[`, `]`, `\]`, `(`, `\(`, `)`, `\)`,
	`~`, `\~`, "`", "\\`", `>`, `\>`, `#`, `\#`, `+`, `\+`, `-`, `\-`,
	`=`, `\=`, `|`, `\|`, `{`, `\{`, `}`, `\}`, `.`, `\.`, `!`, `\!`,
)

// EscapeMarkdownV2 backslash-escapes every character MarkdownV2 reserves
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}
