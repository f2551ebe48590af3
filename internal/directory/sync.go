package directory

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"ledgerchat/internal/ledger"
)

const lastSyncKey = "directory.last_sync"

// Applier writes vendor e-mail assignments into a stored session.
type Applier interface {
	ApplyAssignments(ctx context.Context, sessionID string, assignments []ledger.Assignment) (ledger.UpdateReport, error)
}

type MetadataStore interface {
	SetMetadata(key, value string) error
	GetMetadata(key string) (*string, error)
}

type SyncService struct {
	source  Source
	applier Applier
	meta    MetadataStore
	logger  *zap.Logger
	now     func() time.Time
}

func NewSyncService(source Source, applier Applier, meta MetadataStore, logger *zap.Logger) *SyncService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SyncService{source: source, applier: applier, meta: meta, logger: logger, now: time.Now}
}

// Sync fetches the directory and assigns vendor_email on every matching
// row of the session.
func (s *SyncService) Sync(ctx context.Context, sessionID string) (ledger.UpdateReport, error) {
	contacts, err := s.source.Contacts(ctx)
	if err != nil {
		return ledger.UpdateReport{}, fmt.Errorf("fetch vendor directory: %w", err)
	}

	assignments := Assignments(contacts)
	report, err := s.applier.ApplyAssignments(ctx, sessionID, assignments)
	if err != nil {
		return ledger.UpdateReport{}, err
	}

	if err := s.meta.SetMetadata(lastSyncKey, s.now().UTC().Format(time.RFC3339)); err != nil {
		return report, err
	}

	s.logger.Info("vendor directory synced",
		zap.String("session", sessionID),
		zap.Int("contacts", len(contacts)),
		zap.Int("vendors", len(report.Vendors)),
		zap.Int("rows", report.RowCount()),
		zap.Int("unmatched", len(report.Unmatched)),
	)
	return report, nil
}

func (s *SyncService) LastSync() (*string, error) {
	return s.meta.GetMetadata(lastSyncKey)
}
