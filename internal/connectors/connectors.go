// Package connectors fetches raw mail from a mailbox provider and keeps a
// copy of every message on disk, indexed in the emails table.
package connectors

import (
	"context"
	"fmt"
	"strings"

	"ledgerchat/internal"
	"ledgerchat/internal/config"
	gmailconnector "ledgerchat/internal/connectors/gmail"
	imapconnector "ledgerchat/internal/connectors/imap"
)

type MailConnector interface {
	FetchInbox(ctx context.Context, label string, max int) ([]internal.FetchedMailMessage, error)
}

// NewMailConnector builds the connector for provider ("gmail" or "imap").
func NewMailConnector(cfg config.Config, provider string) (MailConnector, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "gmail":
		return gmailconnector.NewConnector(cfg)
	case "imap":
		return imapconnector.NewConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported mail provider: %s", provider)
	}
}
