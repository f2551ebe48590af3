package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"ledgerchat/internal/export"
	"ledgerchat/internal/ingest"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/reconcile"
	"ledgerchat/internal/render"
)

var reconcileOut string

var reconcileCmd = &cobra.Command{
	Use:   "reconcile <payments-file>",
	Short: "Match payment lines against the session's invoices",
	Long: `reconcile reads a payments file (any supported format, with vendor, amount,
payment date and optionally an invoice reference column) and matches every
line to an invoice of the session. Results are printed and written to xlsx.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		paymentsTable, _, err := ingest.Load(args[0], content, ledger.Options{DefaultCurrency: cfg.DefaultCurrency})
		if err != nil {
			return fmt.Errorf("load payments: %w", err)
		}

		db, svc, err := openSessions()
		if err != nil {
			return err
		}
		defer db.Close()

		id, err := svc.Resolve(sessionID)
		if err != nil {
			return err
		}
		invoices, err := svc.Store(id)
		if err != nil {
			return err
		}

		results := reconcile.Run(invoices, reconcile.PaymentsFromTable(paymentsTable), cfg.ReconcileAmountTolerance)
		rows := reconcile.ExportRows(results)
		summary := reconcile.Summarize(results)

		path := reconcileOut
		if path == "" {
			path = filepath.Join(cfg.OutputDir, "reconcile_"+id+".xlsx")
		}
		if err := export.SaveReconciliation(rows, path); err != nil {
			return err
		}

		logger.Info("reconciliation done",
			zap.String("session", id),
			zap.Int("ok", summary.OK),
			zap.Int("review", summary.Review),
			zap.Int("not_found", summary.NotFound),
		)
		out := cmd.OutOrStdout()
		render.Reconciliation(out, rows)
		fmt.Fprintf(out, "OK=%d REVIEW=%d NOT_FOUND=%d -> %s\n", summary.OK, summary.Review, summary.NotFound, path)
		return nil
	},
}

func init() {
	reconcileCmd.Flags().StringVarP(&reconcileOut, "out", "o", "", "Output path (default: OUTPUT_DIR/reconcile_<session>.xlsx)")
}
