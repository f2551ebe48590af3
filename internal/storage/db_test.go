package storage

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "app.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleTable() *ledger.Table {
	return ledger.FromRaw(
		[]string{"Invoice No", "Vendor", "Amount", "Notes"},
		[][]string{{"INV-1", "Acme", "10", "rush"}, {"INV-2", "Globex", "20", ""}},
		ledger.Options{DefaultCurrency: "USD"},
	)
}

func seedSession(t *testing.T, db *DB, sessionID string) *ledger.Table {
	t.Helper()
	tbl := sampleTable()
	ds, err := db.InsertDataset(internal.DatasetRow{
		ID: "ds-1", Name: "ledger.csv", Source: "ledger.csv", Format: "csv",
		Checksum: "abc", Columns: tbl.Columns, RowCount: tbl.Len(),
	})
	require.NoError(t, err)
	require.NoError(t, db.CreateSession(sessionID, ds.ID, tbl))
	return tbl
}

func TestInsertDatasetReusesChecksum(t *testing.T) {
	db := openTestDB(t)
	first, err := db.InsertDataset(internal.DatasetRow{ID: "ds-1", Name: "a.csv", Source: "a.csv", Format: "csv", Checksum: "same", Columns: []string{"invoice_no"}})
	require.NoError(t, err)
	second, err := db.InsertDataset(internal.DatasetRow{ID: "ds-2", Name: "b.csv", Source: "b.csv", Format: "csv", Checksum: "same"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, []string{"invoice_no"}, second.Columns)

	_, err = db.GetDataset("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionRoundTrip(t *testing.T) {
	db := openTestDB(t)
	want := seedSession(t, db, "s-1")

	got, err := db.LoadTable("s-1")
	require.NoError(t, err)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("table mismatch (-want +got):\n%s", diff)
	}

	s, err := db.GetSession("s-1")
	require.NoError(t, err)
	assert.Nil(t, s.CurrentFilter)

	require.NoError(t, db.SaveCurrentFilter("s-1", []int{2, 1}))
	s, err = db.GetSession("s-1")
	require.NoError(t, err)
	assert.Equal(t, []int{2, 1}, s.CurrentFilter)

	require.NoError(t, db.SaveCurrentFilter("s-1", nil))
	s, err = db.GetSession("s-1")
	require.NoError(t, err)
	assert.Nil(t, s.CurrentFilter)

	err = db.SaveCurrentFilter("nope", []int{1})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("got %v want ErrNotFound", err)
	}
}

func TestUpdateRecords(t *testing.T) {
	db := openTestDB(t)
	tbl := seedSession(t, db, "s-1")

	rec := tbl.Rows[1].Clone()
	rec.VendorEmail = "ap@globex.test"
	require.NoError(t, db.UpdateRecords("s-1", []ledger.Record{rec}))

	got, err := db.LoadTable("s-1")
	require.NoError(t, err)
	require.Equal(t, 2, got.Len())
	assert.Equal(t, "", got.Rows[0].VendorEmail)
	assert.Equal(t, "ap@globex.test", got.Rows[1].VendorEmail)
	assert.Equal(t, "rush", got.Rows[0].Get("Notes"))
}

func TestQueryLog(t *testing.T) {
	db := openTestDB(t)
	seedSession(t, db, "s-1")

	require.NoError(t, db.InsertQuery(internal.QueryLogRow{SessionID: "s-1", Prompt: "how many", Rule: "broad_filter", Intent: "count", Answer: "Found 2 invoices matching your filters.", ResultRows: 2}))
	require.NoError(t, db.InsertQuery(internal.QueryLogRow{SessionID: "s-1", Prompt: "", Rule: "blank_prompt", Intent: "none", Answer: "Please enter a question."}))

	rows, err := db.ListQueries("s-1", 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "broad_filter", rows[0].Rule)
	assert.Equal(t, 2, rows[0].ResultRows)
}

func TestEmailLifecycle(t *testing.T) {
	db := openTestDB(t)
	seedSession(t, db, "s-1")

	email, err := db.UpsertEmail("imap", "<m1@example.test>", "Ledger", "billing@acme.test", "2024-01-01T00:00:00Z", "h1", "/tmp/h1.eml", string(internal.EmailFetched))
	require.NoError(t, err)
	assert.Nil(t, email.SessionID)

	again, err := db.UpsertEmail("imap", "<m1@example.test>", "Ledger v2", "billing@acme.test", "2024-01-01T00:00:00Z", "h1", "/tmp/h1.eml", string(internal.EmailFetched))
	require.NoError(t, err)
	assert.Equal(t, email.ID, again.ID)
	assert.Equal(t, "Ledger v2", again.Subject)

	pending, err := db.ListEmailsByStatus(internal.EmailFetched, 10)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	sessionID := "s-1"
	require.NoError(t, db.UpdateEmailStatus(email.ID, internal.EmailLoaded, &sessionID))
	loaded, err := db.GetEmailByProviderMessageID("imap", "<m1@example.test>")
	require.NoError(t, err)
	require.NotNil(t, loaded.SessionID)
	assert.Equal(t, "s-1", *loaded.SessionID)
	assert.Equal(t, string(internal.EmailLoaded), loaded.Status)

	missing, err := db.GetEmailByProviderMessageID("imap", "<nope>")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMetadata(t *testing.T) {
	db := openTestDB(t)
	v, err := db.GetMetadata("session.active")
	require.NoError(t, err)
	assert.Nil(t, v)

	require.NoError(t, db.SetMetadata("session.active", "s-1"))
	require.NoError(t, db.SetMetadata("session.active", "s-2"))
	v, err = db.GetMetadata("session.active")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, "s-2", *v)
}
