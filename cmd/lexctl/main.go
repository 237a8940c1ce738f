// Command lexctl runs back-office jobs outside the HTTP server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/lexpro/backoffice/internal/bootstrap"
	"github.com/lexpro/backoffice/pkg/config"
	"github.com/lexpro/backoffice/pkg/logger"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "lexctl",
	Short:         "LexPro back-office operations",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file to load before reading the environment")
	rootCmd.AddCommand(migrateCmd, sendReportCmd, liquidateAllCmd, nextNumberCmd)
}

// withApp builds the application for one command and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *bootstrap.App) error) error {
	cfg := config.Load(envFile)
	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	a, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
