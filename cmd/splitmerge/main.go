// Package main is the entry point for the splitmerge CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/helixml/splitmerge/domain/fragment"
	"github.com/helixml/splitmerge/internal/config"
)

// Version information set via ldflags during build.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Exit codes.
const (
	exitOK         = 0
	exitOther      = 1
	exitValidation = 2
	exitTransfer   = 3
	exitIntegrity  = 4
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(exitCode(err))
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "splitmerge",
		Short: "Split files into checksummed fragments and merge them back",
		Long: `splitmerge cuts a file into fixed-size fragments whose names carry the
original name, the source checksum and the fragment position, and merges
fragments back into a file whose checksum is verified.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return fragment.NewValidationError("flags", err.Error(), nil)
	})
	cmd.PersistentFlags().String("env-file", "", "Path to .env file (default: .env in current directory)")

	cmd.AddCommand(splitCmd())
	cmd.AddCommand(mergeCmd())
	cmd.AddCommand(inspectCmd())
	cmd.AddCommand(listCmd())
	cmd.AddCommand(serveCmd())
	cmd.AddCommand(stdioCmd())
	cmd.AddCommand(versionCmd())

	return cmd
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	switch fragment.KindOf(err) {
	case fragment.KindValidation:
		return exitValidation
	case fragment.KindTransfer:
		return exitTransfer
	case fragment.KindIntegrity:
		return exitIntegrity
	}
	if err == nil {
		return exitOK
	}
	return exitOther
}

// loadConfig loads configuration from .env file and environment variables.
func loadConfig(cmd *cobra.Command) (config.AppConfig, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	cfg, err := config.LoadConfig(envFile)
	if err != nil {
		return config.AppConfig{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
