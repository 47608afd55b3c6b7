package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio-contact/config"
	"portfolio-contact/internal/app"
	"portfolio-contact/internal/domain"
	"portfolio-contact/pkg/logger"
)

type sendOptions struct {
	name     string
	email    string
	message  string
	honeypot string
	ip       string
	verbose  bool
}

func sendCmd() *cobra.Command {
	opts := &sendOptions{}

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Run one submission through the full pipeline",
		Long: `Validate, rate-limit and deliver a single submission using the configured
channels, then wait for any detached Telegram send to finish.

Examples:
  # Smoke-test SMTP and Telegram credentials
  contactctl send --name "Boris Kuznetsov" --email boris@example.com \
    --message "I need help with Docker infrastructure for my startup."

  # Exercise the honeypot path (nothing is delivered)
  contactctl send --name Bot --email bot@example.com --message "buy now buy now" --honeypot http://spam`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			zapLogger := zap.NewNop()
			if opts.verbose {
				if zapLogger, err = logger.NewZap(cfg.Environment, "debug"); err != nil {
					return fmt.Errorf("failed to build logger: %w", err)
				}
			}

			a := app.New(cmd.Context(), cfg, zapLogger)
			result := runSend(cmd.Context(), a, opts)
			a.Close()

			if err := printResult(cmd.OutOrStdout(), result); err != nil {
				return err
			}
			if !result.Success {
				return fmt.Errorf("submission rejected: %s", result.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.name, "name", "", "Sender name")
	cmd.Flags().StringVar(&opts.email, "email", "", "Sender email address")
	cmd.Flags().StringVar(&opts.message, "message", "", "Message body")
	cmd.Flags().StringVar(&opts.honeypot, "honeypot", "", "Value for the hidden trap field")
	cmd.Flags().StringVar(&opts.ip, "ip", "", "Client IP to report as X-Forwarded-For")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "Log pipeline activity to stderr")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runSend(ctx context.Context, a *app.App, opts *sendOptions) domain.ContactResult {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = context.WithValue(ctx, domain.KeyRequestID, "cli-"+uuid.NewString())

	return a.Contact.Submit(ctx, &domain.ContactRequest{
		Name:     opts.name,
		Email:    opts.email,
		Message:  opts.message,
		Honeypot: opts.honeypot,
	}, domain.RequestOrigin{ForwardedFor: opts.ip})
}

func printResult(w io.Writer, result domain.ContactResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
