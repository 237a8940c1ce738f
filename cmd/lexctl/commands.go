package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lexpro/backoffice/internal/bootstrap"
	"github.com/lexpro/backoffice/pkg/apperrors"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(_ context.Context, a *bootstrap.App) error {
			return a.Migrate()
		})
	},
}

var sendReportCmd = &cobra.Command{
	Use:   "send-report",
	Short: "Send the weekly performance report now",
	Long: `Send the weekly performance report to the configured address.

Exits successfully without sending when the report is disabled or no
address is configured.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *bootstrap.App) error {
			res, err := a.Reporter.SendWeeklyReport(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		})
	},
}

var liquidateAllCmd = &cobra.Command{
	Use:   "liquidate-all",
	Short: "Mark every pending commission as paid",
	Long: `Mark every pending commission as paid, one row at a time.

Rows that fail are listed and the command exits non-zero; rows already
paid stay paid.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *bootstrap.App) error {
			rep, err := a.Liquidator.LiquidateAll(ctx, uuid.Nil)
			a.Cache.InvalidateAll(context.WithoutCancel(ctx))
			if perr := printJSON(cmd, rep); perr != nil {
				return perr
			}
			var pb *apperrors.PartialBatchFailure
			if errors.As(err, &pb) {
				return fmt.Errorf("%d of %d commissions failed", len(pb.Failed), pb.Succeeded+len(pb.Failed))
			}
			return err
		})
	},
}

var nextNumberCmd = &cobra.Command{
	Use:   "next-number",
	Short: "Print the case number the next intake would get",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withApp(cmd, func(ctx context.Context, a *bootstrap.App) error {
			n, err := a.Cases.PreviewNumber(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), n)
			return nil
		})
	},
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
