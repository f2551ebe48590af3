package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"ledgerchat/internal/config"
	"ledgerchat/internal/session"
	"ledgerchat/internal/storage"
)

var (
	cfg       config.Config
	logger    *zap.Logger
	verbose   bool
	sessionID string
)

var rootCmd = &cobra.Command{
	Use:   "ledgerchat",
	Short: "Ask questions about accounts-payable invoice spreadsheets",
	Long: `ledgerchat loads an invoice ledger (xlsx, csv, html, pdf or an e-mail
carrying one) and answers plain-English questions about it: counts, sums,
vendor e-mails, single-invoice lookups and filtered result sets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		zcfg := zap.NewProductionConfig()
		if level, err := zapcore.ParseLevel(cfg.LogLevel); err == nil {
			zcfg.Level = zap.NewAtomicLevelAt(level)
		}
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&sessionID, "session", "s", "", "Session id (default: active session)")

	rootCmd.AddCommand(loadCmd, askCmd, chatCmd, exportCmd, sessionsCmd, historyCmd, useCmd)
	rootCmd.AddCommand(reconcileCmd, vendorsCmd, mailCmd, serveCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	err := rootCmd.ExecuteContext(ctx)
	cancel()
	must(err)
}

// openSessions opens the database and the session service on top of it.
// Callers close the returned db.
func openSessions() (*storage.DB, *session.Service, error) {
	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, session.NewService(db, cfg, logger), nil
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
