// Package root contains the root command for the application
package root

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"fjacquet/cashflow/internal/config"
	"fjacquet/cashflow/internal/container"
)

var (
	// LogLevel overrides log.level from the configuration when set.
	LogLevel string

	// Cmd is the root command
	Cmd = &cobra.Command{
		Use:   "cashflow",
		Short: "A personal cash-flow tracker for bank and card statements.",
		Long: `cashflow imports bank account and credit card CSV statements into a
ledger, removes duplicates, reconciles manual entries and projects the months
ahead from recurring templates, installment plans and what-if scenarios.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			config.LoadEnv()
			if LogLevel != "" {
				if _, err := logrus.ParseLevel(LogLevel); err != nil {
					return fmt.Errorf("invalid --log-level %q", LogLevel)
				}
			}
			return nil
		},
	}
)

// Init registers the persistent flags.
func Init() {
	Cmd.PersistentFlags().StringVar(&LogLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
}

// LoadConfig reads the configuration and applies command line overrides.
func LoadConfig() (*config.Config, error) {
	cfg, err := config.InitializeConfig()
	if err != nil {
		return nil, err
	}
	if LogLevel != "" {
		cfg.Log.Level = strings.ToLower(LogLevel)
	}
	return cfg, nil
}

// NewContainer loads the configuration and wires the services. Callers
// close the returned container.
func NewContainer(ctx context.Context) (*container.Container, error) {
	cfg, err := LoadConfig()
	if err != nil {
		return nil, err
	}
	return container.NewContainer(ctx, cfg)
}
