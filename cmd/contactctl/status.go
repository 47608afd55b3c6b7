package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/spf13/cobra"

	"portfolio-contact/config"
	"portfolio-contact/internal/usecase"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which delivery channels are configured",
		Long: `Show the delivery configuration without revealing any secret.

Examples:
  # Show status
  contactctl status

  # Output as JSON
  contactctl status -o json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			return printStatus(cmd.OutOrStdout(), statusFor(cfg), outputFmt)
		},
	}
}

// statusFor reports configuration only; it does not dial Redis or Postgres
func statusFor(cfg *config.Config) map[string]string {
	status := usecase.NewHealthUsecase(usecase.HealthOptions{
		EmailConfigured:    cfg.SMTPConfigured(),
		TelegramConfigured: cfg.TelegramConfigured(),
		StrictDelivery:     cfg.StrictDelivery,
	}).Check(context.Background())

	if cfg.RedisURL != "" {
		status["ledger"] = "redis"
	}
	status["security_events"] = "log-only"
	if cfg.DBUrl != "" && cfg.SecurityLogToDB {
		status["security_events"] = "postgres"
	}
	if cfg.SMTPConfigured() {
		status["email_to"] = cfg.MailTo
	}
	return status
}

func printStatus(w io.Writer, status map[string]string, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(status)
	}

	keys := make([]string, 0, len(status))
	for k := range status {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-16s %s\n", k, status[k])
	}
	return nil
}
