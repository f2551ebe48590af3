package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/util"
)

func TestWriteTable(t *testing.T) {
	tbl := ledger.FromRaw(
		[]string{"Invoice No", "Vendor", "Amount"},
		[][]string{{"INV-1", "Acme", "10"}, {"INV-2", "Globex", "20"}},
		ledger.Options{DefaultCurrency: "USD"},
	)

	buf := bytes.NewBuffer(nil)
	require.NoError(t, WriteTable(tbl, buf))

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, tbl.Columns, rows[0])
	assert.Equal(t, "INV-2", rows[2][0])
	assert.Equal(t, "Globex", rows[2][1])
}

func TestSaveReconciliation(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "reconcile.xlsx")
	rows := []internal.ReconcileExportRow{
		{LineNo: 1, Vendor: "Acme", Amount: "100.00", MatchStatus: "OK", MatchReason: "VENDOR_AMOUNT", InvoiceNo: util.StringPtr("INV-1"), CandidateCount: 1},
		{LineNo: 2, Vendor: "Umbrella", Amount: "5.00", MatchStatus: "NOT_FOUND", MatchReason: "NONE"},
	}
	require.NoError(t, SaveReconciliation(rows, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()
	sheet := f.GetSheetName(0)

	v, err := f.GetCellValue(sheet, "H2")
	require.NoError(t, err)
	assert.Equal(t, "INV-1", v)
	v, err = f.GetCellValue(sheet, "F3")
	require.NoError(t, err)
	assert.Equal(t, "NOT_FOUND", v)
}
