// Package listener polls a mailbox and turns new ledger attachments into
// sessions.
package listener

import (
	"context"
	"time"

	"go.uber.org/zap"

	"ledgerchat/internal/config"
	"ledgerchat/internal/connectors"
	"ledgerchat/internal/session"
	"ledgerchat/internal/storage"
)

type MailLoader interface {
	LoadPendingMail(ctx context.Context, limit int) (session.MailLoadResult, error)
}

type Service struct {
	db        *storage.DB
	cfg       config.Config
	connector connectors.MailConnector
	loader    MailLoader
	logger    *zap.Logger
}

func NewService(db *storage.DB, cfg config.Config, connector connectors.MailConnector, loader MailLoader, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, cfg: cfg, connector: connector, loader: loader, logger: logger}
}

// Run polls until ctx is cancelled. A failed cycle is logged and retried
// on the next tick.
func (s *Service) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.MailListenerIntervalSec) * time.Second
	if interval <= 0 {
		interval = time.Minute
	}

	for {
		if err := s.RunCycle(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("listener cycle failed", zap.Error(err))
		}

		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (s *Service) RunCycle(ctx context.Context) error {
	fetchService := connectors.NewFetchService(s.db, s.cfg.RawMailDir, s.connector)
	fetched, err := fetchService.FetchAndStore(ctx, s.cfg.MailListenerLabel, s.cfg.MailListenerFetchMax)
	if err != nil {
		return err
	}

	loaded, err := s.loader.LoadPendingMail(ctx, s.cfg.MailListenerProcessBatch)
	if err != nil {
		return err
	}

	s.logger.Info("listener cycle done",
		zap.String("provider", s.cfg.MailListenerProvider),
		zap.Int("fetched", fetched.Fetched),
		zap.Int("stored", fetched.Stored),
		zap.Int("loaded", loaded.Loaded),
		zap.Int("skipped", loaded.Skipped),
		zap.Int("failed", loaded.Failed),
	)
	return nil
}
