// Command bnmcp serves Binance account, order and candle operations as
// line-delimited JSON-RPC over stdin and stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"bnmcp/internal/keyring"
	"bnmcp/internal/logger"
	"bnmcp/pkg/core"
	"bnmcp/pkg/exchange/binance"
	"bnmcp/pkg/rpc"
)

type flags struct {
	baseURL   string
	timeout   time.Duration
	logLevel  string
	logFormat string
	envFile   string
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	f := &flags{}

	cmd := &cobra.Command{
		Use:           "bnmcp",
		Short:         "Binance operations over stdio JSON-RPC",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), f)
		},
	}

	cmd.Flags().StringVar(&f.baseURL, "base-url", "", "exchange base URL (default "+core.DefaultBaseURL+")")
	cmd.Flags().DurationVar(&f.timeout, "timeout", core.DefaultTimeout, "HTTP timeout per request")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "info", "log level: trace, debug, info, warn, error, disabled")
	cmd.Flags().StringVar(&f.logFormat, "log-format", logger.FormatJSON, "log format: json or console")
	cmd.Flags().StringVar(&f.envFile, "env-file", ".env", "optional dotenv file with default credentials")

	return cmd
}

// loadConfig builds the process defaults from the environment and flags.
func loadConfig(f *flags, lookup func(string) (string, bool)) *core.Config {
	config := core.ConfigFromEnv(lookup).WithTimeout(f.timeout)
	config.LogLevel = strings.ToLower(strings.TrimSpace(f.logLevel))
	if f.baseURL != "" {
		config.WithBaseURL(f.baseURL)
	}
	return config
}

func run(ctx context.Context, f *flags) error {
	var envErr error
	if f.envFile != "" {
		if err := godotenv.Load(f.envFile); err != nil && !os.IsNotExist(err) {
			envErr = err
		}
	}

	config := loadConfig(f, os.LookupEnv)
	log := logger.New(os.Stderr, config.LogLevel, f.logFormat)
	if envErr != nil {
		log.Warn().Err(envErr).Str("file", f.envFile).Msg("env file not loaded")
	}

	server, err := rpc.NewServer(config,
		rpc.WithLogger(log),
		rpc.WithFactory(binance.Factory),
	)
	if err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		return fmt.Errorf("create server: %w", err)
	}

	log.Info().
		Str("base_url", config.BaseURL).
		Dur("timeout", config.Timeout).
		Str("credentials", keyring.Describe(config.Credentials)).
		Msg("serving on stdio")

	if err := server.Serve(ctx, os.Stdin, os.Stdout); err != nil {
		log.Error().Err(err).Msg("serve stopped")
		return err
	}
	log.Info().Msg("input closed")
	return nil
}
