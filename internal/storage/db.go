package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
)

var ErrNotFound = errors.New("not found")

type DB struct {
	conn *sql.DB
}

func Open(path string) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite has a single writer
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec(`PRAGMA journal_mode = WAL;`); err != nil {
		_ = conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.init(); err != nil {
		_ = conn.Close()
		return nil, err
	}

	return db, nil
}

func (d *DB) Close() error {
	return d.conn.Close()
}

func (d *DB) init() error {
	schema := `
CREATE TABLE IF NOT EXISTS datasets (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  source TEXT NOT NULL,
  format TEXT NOT NULL,
  checksum TEXT NOT NULL UNIQUE,
  columnsJson TEXT NOT NULL,
  rowCount INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS sessions (
  id TEXT PRIMARY KEY,
  datasetId TEXT NOT NULL,
  currentFilterJson TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(datasetId) REFERENCES datasets(id)
);

CREATE TABLE IF NOT EXISTS records (
  sessionId TEXT NOT NULL,
  rowNo INTEGER NOT NULL,
  recordJson TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  PRIMARY KEY(sessionId, rowNo),
  FOREIGN KEY(sessionId) REFERENCES sessions(id)
);

CREATE TABLE IF NOT EXISTS queries (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  sessionId TEXT NOT NULL,
  prompt TEXT NOT NULL,
  rule TEXT NOT NULL,
  intent TEXT NOT NULL,
  answer TEXT NOT NULL,
  resultRows INTEGER NOT NULL,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  FOREIGN KEY(sessionId) REFERENCES sessions(id)
);
CREATE INDEX IF NOT EXISTS idx_queries_session ON queries(sessionId);

CREATE TABLE IF NOT EXISTS emails (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  provider TEXT NOT NULL,
  messageId TEXT NOT NULL,
  subject TEXT,
  sender TEXT,
  receivedAt TEXT,
  hash TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'fetched',
  rawRef TEXT NOT NULL,
  sessionId TEXT,
  createdAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
  UNIQUE(provider, messageId)
);

CREATE TABLE IF NOT EXISTS metadata (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updatedAt TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`

	_, err := d.conn.Exec(schema)
	return err
}

// InsertDataset stores a dataset row. A dataset with the same checksum is
// returned unchanged instead of inserted twice.
func (d *DB) InsertDataset(ds internal.DatasetRow) (internal.DatasetRow, error) {
	existing, err := d.FindDatasetByChecksum(ds.Checksum)
	if err != nil {
		return internal.DatasetRow{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	columnsJSON, _ := json.Marshal(ds.Columns)
	_, err = d.conn.Exec(`
INSERT INTO datasets (id, name, source, format, checksum, columnsJson, rowCount)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, ds.ID, ds.Name, ds.Source, ds.Format, ds.Checksum, string(columnsJSON), ds.RowCount)
	if err != nil {
		return internal.DatasetRow{}, err
	}
	return d.GetDataset(ds.ID)
}

func (d *DB) FindDatasetByChecksum(checksum string) (*internal.DatasetRow, error) {
	row, err := d.scanDataset(d.conn.QueryRow(`
SELECT id, name, source, format, checksum, columnsJson, rowCount, createdAt
FROM datasets WHERE checksum = ?
`, checksum))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) GetDataset(id string) (internal.DatasetRow, error) {
	return d.scanDataset(d.conn.QueryRow(`
SELECT id, name, source, format, checksum, columnsJson, rowCount, createdAt
FROM datasets WHERE id = ?
`, id))
}

func (d *DB) scanDataset(row *sql.Row) (internal.DatasetRow, error) {
	var ds internal.DatasetRow
	var columnsJSON string
	err := row.Scan(&ds.ID, &ds.Name, &ds.Source, &ds.Format, &ds.Checksum, &columnsJSON, &ds.RowCount, &ds.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return internal.DatasetRow{}, ErrNotFound
	}
	if err != nil {
		return internal.DatasetRow{}, err
	}
	_ = json.Unmarshal([]byte(columnsJSON), &ds.Columns)
	return ds, nil
}

// CreateSession stores a new session with its own copy of the records.
func (d *DB) CreateSession(sessionID, datasetID string, t *ledger.Table) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT INTO sessions (id, datasetId) VALUES (?, ?)`, sessionID, datasetID); err != nil {
		return err
	}
	if err := upsertRecords(tx, sessionID, t.Rows); err != nil {
		return err
	}
	return tx.Commit()
}

func (d *DB) GetSession(id string) (internal.SessionRow, error) {
	var s internal.SessionRow
	var filterJSON sql.NullString
	err := d.conn.QueryRow(`
SELECT id, datasetId, currentFilterJson, createdAt, updatedAt FROM sessions WHERE id = ?
`, id).Scan(&s.ID, &s.DatasetID, &filterJSON, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return internal.SessionRow{}, fmt.Errorf("session %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return internal.SessionRow{}, err
	}
	if filterJSON.Valid {
		s.CurrentFilter = []int{}
		_ = json.Unmarshal([]byte(filterJSON.String), &s.CurrentFilter)
	}
	return s, nil
}

func (d *DB) ListSessions(limit int) ([]internal.SessionRow, error) {
	rows, err := d.conn.Query(`
SELECT id, datasetId, createdAt, updatedAt FROM sessions ORDER BY createdAt DESC, rowid DESC LIMIT ?
`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.SessionRow
	for rows.Next() {
		var s internal.SessionRow
		if err := rows.Scan(&s.ID, &s.DatasetID, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// SaveCurrentFilter stores the filter as row numbers; nil clears it.
func (d *DB) SaveCurrentFilter(sessionID string, rowNumbers []int) error {
	var value any
	if rowNumbers != nil {
		blob, _ := json.Marshal(rowNumbers)
		value = string(blob)
	}
	res, err := d.conn.Exec(`
UPDATE sessions SET currentFilterJson = ?, updatedAt = CURRENT_TIMESTAMP WHERE id = ?
`, value, sessionID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// LoadTable rebuilds the store of a session in source row order.
func (d *DB) LoadTable(sessionID string) (*ledger.Table, error) {
	s, err := d.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	ds, err := d.GetDataset(s.DatasetID)
	if err != nil {
		return nil, err
	}

	rows, err := d.conn.Query(`SELECT recordJson FROM records WHERE sessionId = ? ORDER BY rowNo ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	t := &ledger.Table{Columns: ds.Columns}
	for rows.Next() {
		var blob string
		if err := rows.Scan(&blob); err != nil {
			return nil, err
		}
		var rec ledger.Record
		if err := json.Unmarshal([]byte(blob), &rec); err != nil {
			return nil, fmt.Errorf("decode record: %w", err)
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, rows.Err()
}

// UpdateRecords overwrites the given rows of a session store.
func (d *DB) UpdateRecords(sessionID string, records []ledger.Record) error {
	tx, err := d.conn.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := upsertRecords(tx, sessionID, records); err != nil {
		return err
	}
	if _, err := tx.Exec(`UPDATE sessions SET updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, sessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func upsertRecords(tx *sql.Tx, sessionID string, records []ledger.Record) error {
	stmt, err := tx.Prepare(`
INSERT INTO records (sessionId, rowNo, recordJson) VALUES (?, ?, ?)
ON CONFLICT(sessionId, rowNo) DO UPDATE SET
  recordJson=excluded.recordJson,
  updatedAt=CURRENT_TIMESTAMP
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		blob, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := stmt.Exec(sessionID, r.Row, string(blob)); err != nil {
			return err
		}
	}
	return nil
}

func (d *DB) InsertQuery(q internal.QueryLogRow) error {
	_, err := d.conn.Exec(`
INSERT INTO queries (sessionId, prompt, rule, intent, answer, resultRows) VALUES (?, ?, ?, ?, ?, ?)
`, q.SessionID, q.Prompt, q.Rule, q.Intent, q.Answer, q.ResultRows)
	return err
}

func (d *DB) ListQueries(sessionID string, limit int) ([]internal.QueryLogRow, error) {
	rows, err := d.conn.Query(`
SELECT id, sessionId, prompt, rule, intent, answer, resultRows, createdAt
FROM queries WHERE sessionId = ? ORDER BY id ASC LIMIT ?
`, sessionID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.QueryLogRow
	for rows.Next() {
		var q internal.QueryLogRow
		if err := rows.Scan(&q.ID, &q.SessionID, &q.Prompt, &q.Rule, &q.Intent, &q.Answer, &q.ResultRows, &q.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (d *DB) UpsertEmail(provider, messageID, subject, sender, receivedAt, hash, rawRef, status string) (internal.EmailRow, error) {
	_, err := d.conn.Exec(`
INSERT INTO emails (provider, messageId, subject, sender, receivedAt, hash, status, rawRef)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(provider, messageId) DO UPDATE SET
  subject=excluded.subject,
  sender=excluded.sender,
  receivedAt=excluded.receivedAt,
  hash=excluded.hash,
  rawRef=excluded.rawRef,
  updatedAt=CURRENT_TIMESTAMP
`, provider, messageID, subject, sender, receivedAt, hash, status, rawRef)
	if err != nil {
		return internal.EmailRow{}, err
	}

	row, err := d.GetEmailByProviderMessageID(provider, messageID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if row == nil {
		return internal.EmailRow{}, errors.New("failed to upsert email")
	}
	return *row, nil
}

const emailColumns = `id, provider, messageId, subject, sender, receivedAt, hash, status, rawRef, sessionId`

func scanEmail(scan func(dest ...any) error) (internal.EmailRow, error) {
	var row internal.EmailRow
	var sessionID sql.NullString
	err := scan(&row.ID, &row.Provider, &row.MessageID, &row.Subject, &row.Sender, &row.ReceivedAt, &row.Hash, &row.Status, &row.RawRef, &sessionID)
	if err != nil {
		return internal.EmailRow{}, err
	}
	if sessionID.Valid {
		row.SessionID = &sessionID.String
	}
	return row, nil
}

func (d *DB) GetEmailByProviderMessageID(provider, messageID string) (*internal.EmailRow, error) {
	row, err := scanEmail(d.conn.QueryRow(`SELECT `+emailColumns+` FROM emails WHERE provider = ? AND messageId = ?`, provider, messageID).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (d *DB) ListEmailsByStatus(status internal.EmailStatus, limit int) ([]internal.EmailRow, error) {
	rows, err := d.conn.Query(`SELECT `+emailColumns+` FROM emails WHERE status = ? ORDER BY receivedAt ASC LIMIT ?`, string(status), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []internal.EmailRow
	for rows.Next() {
		row, err := scanEmail(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (d *DB) UpdateEmailStatus(emailID int, status internal.EmailStatus, sessionID *string) error {
	_, err := d.conn.Exec(`UPDATE emails SET status = ?, sessionId = COALESCE(?, sessionId), updatedAt = CURRENT_TIMESTAMP WHERE id = ?`, string(status), sessionID, emailID)
	return err
}

func (d *DB) SetMetadata(key, value string) error {
	_, err := d.conn.Exec(`
INSERT INTO metadata (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value, updatedAt = CURRENT_TIMESTAMP
`, key, value)
	return err
}

func (d *DB) GetMetadata(key string) (*string, error) {
	var value string
	err := d.conn.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &value, nil
}
