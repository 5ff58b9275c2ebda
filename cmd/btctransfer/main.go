package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/renproject/btctransfer"
	"github.com/renproject/btctransfer/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const programName = "btctransfer"

var (
	globalFlags = struct {
		debug bool
	}{}
	configFile string
)

func newLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(cfg.Level())
	if globalFlags.debug {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// setup returns the loaded config, a logger and a client for the configured
// backend.
func setup(cmd *cobra.Command) (*config.Config, logrus.FieldLogger, btctransfer.Client, error) {
	cfg := config.FromContext(cmd.Context())
	if cfg == nil {
		return nil, nil, nil, fmt.Errorf("no config found in context")
	}
	logger := newLogger(cfg).WithField("component", programName)
	client, err := btctransfer.NewBackendClient(cfg.Network, cfg.ClientOptions(), logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, logger, client, nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:           programName,
		Short:         "Send, sign and track bitcoin testnet transfers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().
		BoolVarP(&globalFlags.debug, "debug", "D", false, "enable debug logging")
	rootCmd.PersistentFlags().
		StringVar(&configFile, "config", "", "path to config file")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadConfig(configFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cmd.SetContext(config.WithContext(cmd.Context(), cfg))
		return nil
	}

	rootCmd.AddCommand(sendCommand())
	rootCmd.AddCommand(trackCommand())
	rootCmd.AddCommand(validateCommand())
	rootCmd.AddCommand(deriveCommand())
	rootCmd.AddCommand(addressesCommand())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
