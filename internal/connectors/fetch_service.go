package connectors

import (
	"context"
	"errors"

	"ledgerchat/internal/storage"
)

type FetchService struct {
	db        *storage.DB
	connector MailConnector
	archive   *MailArchive
}

type FetchResult struct {
	Fetched int
	Stored  int
}

func NewFetchService(db *storage.DB, rawMailDir string, connector MailConnector) *FetchService {
	return &FetchService{
		db:        db,
		connector: connector,
		archive:   NewMailArchive(db, rawMailDir),
	}
}

// FetchAndStore pulls up to max messages from label. Stored counts only
// messages that were not indexed before; empty messages are dropped.
func (s *FetchService) FetchAndStore(ctx context.Context, label string, max int) (FetchResult, error) {
	messages, err := s.connector.FetchInbox(ctx, label, max)
	if err != nil {
		return FetchResult{}, err
	}

	stored := 0
	for _, msg := range messages {
		if err := ctx.Err(); err != nil {
			return FetchResult{}, err
		}
		existing, err := s.db.GetEmailByProviderMessageID(msg.Provider, msg.MessageID)
		if err != nil {
			return FetchResult{}, err
		}
		if _, err := s.archive.Archive(msg); err != nil {
			if errors.Is(err, ErrEmptyMessage) {
				continue
			}
			return FetchResult{}, err
		}
		if existing == nil {
			stored++
		}
	}

	return FetchResult{Fetched: len(messages), Stored: stored}, nil
}
