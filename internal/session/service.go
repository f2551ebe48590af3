// Package session ties ingestion, persistence and the query interpreter
// together: every upload becomes a dataset plus a fresh session, and every
// prompt is evaluated against that session's stored table.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ledgerchat/internal"
	"ledgerchat/internal/config"
	"ledgerchat/internal/connectors"
	"ledgerchat/internal/ingest"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/query"
	"ledgerchat/internal/storage"
	"ledgerchat/internal/util"
)

const activeSessionKey = "session.active"

var ErrNoActiveSession = errors.New("no active session; load a file first")

type Service struct {
	db       *storage.DB
	cfg      config.Config
	logger   *zap.Logger
	settings query.Settings
}

type Upload struct {
	SessionID string
	Dataset   internal.DatasetRow
	Table     *ledger.Table
	// Reused is set when identical bytes were uploaded before.
	Reused bool
}

type MailLoadResult struct {
	Loaded   int
	Skipped  int
	Failed   int
	Sessions []string
}

func NewService(db *storage.DB, cfg config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:       db,
		cfg:      cfg,
		logger:   logger,
		settings: query.Settings{DefaultTopN: cfg.DefaultTopN},
	}
}

// WithSettings overrides the interpreter settings, e.g. a fixed reference day.
func (s *Service) WithSettings(settings query.Settings) *Service {
	s.settings = settings
	return s
}

func (s *Service) options() ledger.Options {
	return ledger.Options{DefaultCurrency: s.cfg.DefaultCurrency}
}

// Upload ingests a file and opens a new session on it. The new session
// becomes the active one.
func (s *Service) Upload(ctx context.Context, filename string, content []byte) (Upload, error) {
	if err := ctx.Err(); err != nil {
		return Upload{}, err
	}
	if len(content) == 0 {
		return Upload{}, ingest.ErrEmptyUpload
	}

	t, raw, err := ingest.Load(filename, content, s.options())
	if err != nil {
		return Upload{}, err
	}
	return s.open(filepath.Base(filename), raw, t, util.Checksum(content))
}

func (s *Service) open(name string, raw ingest.RawTable, t *ledger.Table, checksum string) (Upload, error) {
	ds := internal.DatasetRow{
		ID:       uuid.NewString(),
		Name:     name,
		Source:   raw.Source,
		Format:   string(raw.Format),
		Checksum: checksum,
		Columns:  t.Columns,
		RowCount: t.Len(),
	}
	stored, err := s.db.InsertDataset(ds)
	if err != nil {
		return Upload{}, fmt.Errorf("store dataset: %w", err)
	}

	sessionID := uuid.NewString()
	if err := s.db.CreateSession(sessionID, stored.ID, t); err != nil {
		return Upload{}, fmt.Errorf("create session: %w", err)
	}
	if err := s.db.SetMetadata(activeSessionKey, sessionID); err != nil {
		return Upload{}, err
	}

	s.logger.Info("dataset loaded",
		zap.String("session", sessionID),
		zap.String("dataset", stored.ID),
		zap.String("source", raw.Source),
		zap.Int("rows", t.Len()),
		zap.Strings("columns", t.Columns),
		zap.Bool("reused", stored.ID != ds.ID),
	)
	return Upload{SessionID: sessionID, Dataset: stored, Table: t, Reused: stored.ID != ds.ID}, nil
}

func (s *Service) load(sessionID string) (query.Session, error) {
	row, err := s.db.GetSession(sessionID)
	if err != nil {
		return query.Session{}, err
	}
	store, err := s.db.LoadTable(sessionID)
	if err != nil {
		return query.Session{}, err
	}

	sess := query.Session{Store: store, Settings: s.settings}
	if row.CurrentFilter != nil {
		sess.CurrentFilter = store.SelectRows(row.CurrentFilter)
	}
	return sess, nil
}

// Ask evaluates one prompt and persists what it changed: updated records,
// the replaced current filter and a query log entry.
func (s *Service) Ask(ctx context.Context, sessionID, prompt string) (query.Response, error) {
	if err := ctx.Err(); err != nil {
		return query.Response{}, err
	}
	sess, err := s.load(sessionID)
	if err != nil {
		return query.Response{}, err
	}

	resp, next := query.Evaluate(prompt, sess)

	if resp.StoreChanged && resp.Result != nil {
		if err := s.db.UpdateRecords(sessionID, resp.Result.Rows); err != nil {
			return query.Response{}, fmt.Errorf("save records: %w", err)
		}
	}
	if next.CurrentFilter != sess.CurrentFilter && next.CurrentFilter != nil {
		if err := s.db.SaveCurrentFilter(sessionID, next.CurrentFilter.RowNumbers()); err != nil {
			return query.Response{}, fmt.Errorf("save current filter: %w", err)
		}
	}

	resultRows := 0
	if resp.Result != nil {
		resultRows = resp.Result.Len()
	}
	if err := s.db.InsertQuery(internal.QueryLogRow{
		SessionID:  sessionID,
		Prompt:     prompt,
		Rule:       resp.Rule,
		Intent:     string(resp.Intent),
		Answer:     resp.Answer,
		ResultRows: resultRows,
	}); err != nil {
		return query.Response{}, err
	}

	s.logger.Debug("query answered",
		zap.String("session", sessionID),
		zap.String("rule", resp.Rule),
		zap.String("intent", string(resp.Intent)),
		zap.Int("rows", resultRows),
	)
	return resp, nil
}

// ApplyAssignments sets vendor_email on the session's store, the same way
// the bulk update command does.
func (s *Service) ApplyAssignments(ctx context.Context, sessionID string, assignments []ledger.Assignment) (ledger.UpdateReport, error) {
	if err := ctx.Err(); err != nil {
		return ledger.UpdateReport{}, err
	}
	store, err := s.db.LoadTable(sessionID)
	if err != nil {
		return ledger.UpdateReport{}, err
	}

	updated, report := ledger.AssignEmails(store, assignments)
	if report.RowCount() == 0 {
		return report, nil
	}
	if err := s.db.UpdateRecords(sessionID, updated.SelectRows(report.Rows).Rows); err != nil {
		return ledger.UpdateReport{}, fmt.Errorf("save records: %w", err)
	}
	return report, nil
}

// Store returns the full table of a session.
func (s *Service) Store(sessionID string) (*ledger.Table, error) {
	return s.db.LoadTable(sessionID)
}

// CurrentFilter returns the cached result set of a session, or nil when no
// filtering query has produced one yet.
func (s *Service) CurrentFilter(sessionID string) (*ledger.Table, error) {
	sess, err := s.load(sessionID)
	if err != nil {
		return nil, err
	}
	return sess.CurrentFilter, nil
}

func (s *Service) ActiveSession() (string, error) {
	v, err := s.db.GetMetadata(activeSessionKey)
	if err != nil {
		return "", err
	}
	if v == nil || strings.TrimSpace(*v) == "" {
		return "", ErrNoActiveSession
	}
	return *v, nil
}

func (s *Service) SetActiveSession(sessionID string) error {
	if _, err := s.db.GetSession(sessionID); err != nil {
		return err
	}
	return s.db.SetMetadata(activeSessionKey, sessionID)
}

// Resolve returns sessionID, or the active session when it is empty.
func (s *Service) Resolve(sessionID string) (string, error) {
	if strings.TrimSpace(sessionID) != "" {
		return sessionID, nil
	}
	return s.ActiveSession()
}

func (s *Service) Sessions(limit int) ([]internal.SessionRow, error) {
	return s.db.ListSessions(limit)
}

func (s *Service) History(sessionID string, limit int) ([]internal.QueryLogRow, error) {
	return s.db.ListQueries(sessionID, limit)
}

// LoadPendingMail turns fetched messages into sessions. The first table of
// a message that looks like a ledger is loaded; messages without one are
// marked skipped. The newest loaded message ends up as the active session.
func (s *Service) LoadPendingMail(ctx context.Context, limit int) (MailLoadResult, error) {
	emails, err := s.db.ListEmailsByStatus(internal.EmailFetched, limit)
	if err != nil {
		return MailLoadResult{}, err
	}

	var result MailLoadResult
	for _, email := range emails {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		status, sessionID, err := s.settleMail(email)
		if err != nil {
			return result, err
		}
		switch status {
		case internal.EmailLoaded:
			result.Loaded++
			result.Sessions = append(result.Sessions, sessionID)
		case internal.EmailSkipped:
			result.Skipped++
		default:
			result.Failed++
		}
	}
	return result, nil
}

// LoadMail loads one stored message regardless of its current status.
func (s *Service) LoadMail(ctx context.Context, provider, messageID string) (internal.EmailStatus, string, error) {
	if err := ctx.Err(); err != nil {
		return "", "", err
	}
	email, err := s.db.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return "", "", err
	}
	if email == nil {
		return "", "", fmt.Errorf("email %s/%s: %w", provider, messageID, storage.ErrNotFound)
	}
	return s.settleMail(*email)
}

// settleMail loads a message and records the outcome on its email row. A
// message that cannot be read is marked failed, not returned as an error.
func (s *Service) settleMail(email internal.EmailRow) (internal.EmailStatus, string, error) {
	sessionID, loadErr := s.loadMail(email)

	status := internal.EmailLoaded
	var ref *string
	switch {
	case loadErr != nil:
		s.logger.Warn("mail load failed", zap.Int("email", email.ID), zap.String("message", email.MessageID), zap.Error(loadErr))
		status = internal.EmailFailed
	case sessionID == "":
		status = internal.EmailSkipped
	default:
		ref = &sessionID
	}

	if err := s.db.UpdateEmailStatus(email.ID, status, ref); err != nil {
		return "", "", err
	}
	return status, sessionID, nil
}

func (s *Service) loadMail(email internal.EmailRow) (string, error) {
	raw, err := connectors.ReadArchived(email)
	if err != nil {
		return "", err
	}
	mail, err := ingest.ReadMail(raw)
	if err != nil {
		return "", err
	}

	for _, tbl := range mail.Tables {
		detect := ingest.DetectLedger(tbl.Headers)
		if !detect.IsLedger {
			s.logger.Debug("mail table skipped",
				zap.String("message", email.MessageID),
				zap.String("source", tbl.Source),
				zap.Float64("score", detect.Score),
				zap.String("reason", detect.Reason),
			)
			continue
		}
		t, err := ingest.ToTable(tbl, s.options())
		if err != nil {
			continue
		}
		name := strings.TrimSpace(mail.Subject)
		if name == "" {
			name = tbl.Source
		}
		up, err := s.open(name, tbl, t, util.Checksum(append(raw, tbl.Source...)))
		if err != nil {
			return "", err
		}
		return up.SessionID, nil
	}
	return "", nil
}
