// Command reconcilectl is the operator tool for payment reconciliation:
// it checks transfer memos, renders bill references and runs a settlement
// sweep outside the API process.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/ezstay/payrecon/internal/app"
	"github.com/ezstay/payrecon/internal/app/service/ledger"
	"github.com/ezstay/payrecon/internal/app/service/reference"
	"github.com/ezstay/payrecon/internal/app/service/settlement"
	"github.com/ezstay/payrecon/internal/app/service/sweep"
	"github.com/ezstay/payrecon/pkg/config"
)

var Version = "dev"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "reconcilectl",
		Short:         "Operator tool for payment reconciliation",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.AddCommand(extractCmd())
	cmd.AddCommand(payloadCmd())
	cmd.AddCommand(sweepCmd())
	return cmd
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [memo]",
		Short: "Show which bill reference a transfer memo resolves to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, ok := reference.Extract(args[0])
			out := map[string]any{"memo": args[0], "found": ok}
			if ok {
				out["reference"] = ref.String()
			}
			return printJSON(cmd, out)
		},
	}
}

func payloadCmd() *cobra.Command {
	var prefix string
	cmd := &cobra.Command{
		Use:   "payload [bill-id]",
		Short: "Render the transfer memo a payer should use for a bill",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid bill id %q: %w", args[0], err)
			}
			return printJSON(cmd, reference.NewPayload(prefix, id))
		},
	}
	cmd.Flags().StringVarP(&prefix, "prefix", "p", reference.DefaultMemoPrefix, "Memo prefix")
	return cmd
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Run one settlement sweep batch against the configured database and billing service",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				cfg     *config.Config
				log     *zap.SugaredLogger
				payment ledger.Ledger
				settler *settlement.Service
			)
			a := fx.New(
				fx.NopLogger,
				app.Platform,
				ledger.Module,
				settlement.Module,
				fx.Populate(&cfg, &log, &payment, &settler),
			)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			startCtx, cancel := context.WithTimeout(ctx, app.DefaultStartTimeout)
			defer cancel()
			if err := a.Start(startCtx); err != nil {
				return fmt.Errorf("failed to start: %w", err)
			}
			defer func() {
				stopCtx, cancel := context.WithTimeout(context.Background(), app.DefaultStopTimeout)
				defer cancel()
				_ = a.Stop(stopCtx)
			}()

			res, err := sweep.NewSweeper(cfg, payment, settler, log).RunOnce(ctx)
			if err != nil {
				return err
			}
			return printJSON(cmd, res)
		},
	}
}
