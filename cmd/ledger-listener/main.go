package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"ledgerchat/internal/config"
	"ledgerchat/internal/connectors"
	"ledgerchat/internal/listener"
	"ledgerchat/internal/session"
	"ledgerchat/internal/storage"
)

func main() {
	cfg, err := config.Load()
	must(err)

	logger, err := zap.NewProduction()
	must(err)
	defer func() { _ = logger.Sync() }()

	db, err := storage.Open(cfg.DBPath)
	must(err)
	defer db.Close()

	conn, err := connectors.NewMailConnector(cfg, cfg.MailListenerProvider)
	must(err)

	sessions := session.NewService(db, cfg, logger)
	svc := listener.NewService(db, cfg, conn, sessions, logger)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	must(svc.Run(ctx))
}

func must(err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
