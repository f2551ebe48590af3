package connectors

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"ledgerchat/internal"
	"ledgerchat/internal/storage"
	"ledgerchat/internal/util"
)

var (
	ErrEmptyMessage     = errors.New("message has no content")
	ErrChecksumMismatch = errors.New("archived message does not match its checksum")
)

// MailArchive keeps fetched messages on disk, one directory per provider,
// until the session service reads their invoice attachments. The emails
// table is the index and points every provider message id at its file.
type MailArchive struct {
	db  *storage.DB
	dir string
}

func NewMailArchive(db *storage.DB, dir string) *MailArchive {
	return &MailArchive{db: db, dir: dir}
}

// Archive stores msg and returns its index row. Identical content from one
// provider shares a file. A message that was already loaded or skipped keeps
// that status, so a refetch never queues it for loading again.
func (a *MailArchive) Archive(msg internal.FetchedMailMessage) (internal.EmailRow, error) {
	if len(msg.Raw) == 0 {
		return internal.EmailRow{}, fmt.Errorf("archive %s %s: %w", msg.Provider, msg.MessageID, ErrEmptyMessage)
	}

	sum := util.Checksum(msg.Raw)
	path, err := a.write(msg.Provider, sum, msg.Raw)
	if err != nil {
		return internal.EmailRow{}, fmt.Errorf("archive %s %s: %w", msg.Provider, msg.MessageID, err)
	}
	return a.db.UpsertEmail(msg.Provider, msg.MessageID, msg.Subject, msg.From, msg.ReceivedAt, sum, path, string(internal.EmailFetched))
}

func (a *MailArchive) write(provider, sum string, raw []byte) (string, error) {
	dir := filepath.Join(a.dir, provider)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, sum+".eml")
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}

	// a crash mid-write must not leave a truncated file under the final name
	tmp, err := os.CreateTemp(dir, sum+".*.tmp")
	if err != nil {
		return "", err
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return "", err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return path, nil
}

// ReadArchived returns the stored bytes of row.
func ReadArchived(row internal.EmailRow) ([]byte, error) {
	raw, err := os.ReadFile(row.RawRef)
	if err != nil {
		return nil, err
	}
	if row.Hash != "" && util.Checksum(raw) != row.Hash {
		return nil, fmt.Errorf("message %s: %w", row.MessageID, ErrChecksumMismatch)
	}
	return raw, nil
}
