package connectors

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerchat/internal"
	"ledgerchat/internal/config"
	"ledgerchat/internal/storage"
)

type staticConnector struct {
	messages []internal.FetchedMailMessage
}

func (c staticConnector) FetchInbox(_ context.Context, _ string, max int) ([]internal.FetchedMailMessage, error) {
	if max < len(c.messages) {
		return c.messages[:max], nil
	}
	return c.messages, nil
}

func openDB(t *testing.T) *storage.DB {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestFetchAndStoreIsIdempotent(t *testing.T) {
	db := openDB(t)
	rawDir := filepath.Join(t.TempDir(), "raw")
	conn := staticConnector{messages: []internal.FetchedMailMessage{
		{Provider: "imap", MessageID: "<1@x>", Subject: "a", ReceivedAt: "2024-03-01T00:00:00Z", Raw: []byte("Subject: a\r\n\r\none")},
		{Provider: "imap", MessageID: "<2@x>", Subject: "b", ReceivedAt: "2024-03-02T00:00:00Z", Raw: []byte("Subject: b\r\n\r\ntwo")},
	}}
	svc := NewFetchService(db, rawDir, conn)

	first, err := svc.FetchAndStore(context.Background(), "INBOX", 10)
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Fetched: 2, Stored: 2}, first)

	second, err := svc.FetchAndStore(context.Background(), "INBOX", 10)
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Fetched: 2, Stored: 0}, second)

	pending, err := db.ListEmailsByStatus(internal.EmailFetched, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	raw, err := os.ReadFile(pending[0].RawRef)
	require.NoError(t, err)
	assert.Equal(t, "Subject: a\r\n\r\none", string(raw))
}

func TestArchiveKeepsStatusOnRefetch(t *testing.T) {
	db := openDB(t)
	archive := NewMailArchive(db, t.TempDir())
	msg := internal.FetchedMailMessage{Provider: "gmail", MessageID: "m1", Raw: []byte("x")}

	row, err := archive.Archive(msg)
	require.NoError(t, err)
	require.NoError(t, db.UpdateEmailStatus(row.ID, internal.EmailLoaded, nil))

	again, err := archive.Archive(msg)
	require.NoError(t, err)
	assert.Equal(t, string(internal.EmailLoaded), again.Status)
}

func TestArchiveLayout(t *testing.T) {
	db := openDB(t)
	dir := t.TempDir()
	archive := NewMailArchive(db, dir)

	a, err := archive.Archive(internal.FetchedMailMessage{Provider: "imap", MessageID: "<a@x>", Raw: []byte("same")})
	require.NoError(t, err)
	b, err := archive.Archive(internal.FetchedMailMessage{Provider: "imap", MessageID: "<b@x>", Raw: []byte("same")})
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, a.RawRef, b.RawRef)
	assert.Equal(t, filepath.Join(dir, "imap"), filepath.Dir(a.RawRef))

	entries, err := os.ReadDir(filepath.Join(dir, "imap"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")

	raw, err := ReadArchived(a)
	require.NoError(t, err)
	assert.Equal(t, "same", string(raw))

	_, err = archive.Archive(internal.FetchedMailMessage{Provider: "imap", MessageID: "<c@x>"})
	assert.ErrorIs(t, err, ErrEmptyMessage)
}

func TestReadArchivedDetectsTampering(t *testing.T) {
	db := openDB(t)
	archive := NewMailArchive(db, t.TempDir())
	row, err := archive.Archive(internal.FetchedMailMessage{Provider: "gmail", MessageID: "m1", Raw: []byte("original")})
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(row.RawRef, []byte("changed"), 0o644))
	_, err = ReadArchived(row)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestFetchAndStoreDropsEmptyMessages(t *testing.T) {
	db := openDB(t)
	conn := staticConnector{messages: []internal.FetchedMailMessage{
		{Provider: "imap", MessageID: "<1@x>"},
		{Provider: "imap", MessageID: "<2@x>", Raw: []byte("Subject: b\r\n\r\ntwo")},
	}}
	res, err := NewFetchService(db, t.TempDir(), conn).FetchAndStore(context.Background(), "INBOX", 10)
	require.NoError(t, err)
	assert.Equal(t, FetchResult{Fetched: 2, Stored: 1}, res)
}

func TestNewMailConnectorRejectsUnknownProvider(t *testing.T) {
	_, err := NewMailConnector(config.Config{}, "pop3")
	require.Error(t, err)
}
