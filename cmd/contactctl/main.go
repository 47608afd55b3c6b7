// contactctl is a CLI for checking and smoke-testing the contact pipeline
// with the same configuration the API server uses.
//
// Usage:
//
//	contactctl status
//	contactctl send --name "Boris Kuznetsov" --email boris@example.com --message "Hello there, testing."
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	outputFmt string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contactctl",
		Short: "Inspect and exercise the contact form pipeline",
		Long: `contactctl reads the same environment (and .env file) as the API server.

It reports which delivery channels are configured and can push a single
submission through validation, rate limiting and delivery.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "table", "Output format: table, json")

	rootCmd.AddCommand(statusCmd())
	rootCmd.AddCommand(sendCmd())

	return rootCmd
}
