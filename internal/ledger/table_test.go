package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	return FromRaw(
		[]string{"Invoice Number", "Supplier", "Email", "Status", "Total", "Due Date", "Notes"},
		[][]string{
			{"INV-1001", "Acme Corp", "billing@acme.test", "Paid", "1,200.00", "2024-01-15", "first"},
			{"", "", "", "", "", "", ""},
			{"INV-1002", "Globex", "", "Open", "n/a", "soon"},
		},
		Options{DefaultCurrency: "USD"},
	)
}

func TestFromRawBuildsFullSchema(t *testing.T) {
	tbl := sampleTable()
	require.Equal(t, 2, tbl.Len())

	for _, field := range CanonicalFields {
		assert.Contains(t, tbl.Columns, field)
	}

	first := tbl.Rows[0]
	assert.Equal(t, 1, first.Row)
	assert.Equal(t, "INV-1001", first.InvoiceNo)
	assert.Equal(t, "Acme Corp", first.VendorName)
	assert.Equal(t, "USD", first.Currency)
	assert.Equal(t, "first", first.Get("Notes"))

	second := tbl.Rows[1]
	assert.Equal(t, 3, second.Row, "blank rows are skipped but numbering follows the source")
	assert.Equal(t, "", second.Get("Notes"), "short rows are padded")
}

func TestRecordCoercionNeverFails(t *testing.T) {
	tbl := sampleTable()

	amount, ok := tbl.Rows[0].AmountValue()
	require.True(t, ok)
	assert.Equal(t, "1200", amount.String())

	_, ok = tbl.Rows[1].AmountValue()
	assert.False(t, ok)
	_, ok = tbl.Rows[1].Due()
	assert.False(t, ok)
}

func TestSelectRowsFollowsRequestedOrder(t *testing.T) {
	tbl := sampleTable()
	sub := tbl.SelectRows([]int{3, 1, 99})
	require.Equal(t, 2, sub.Len())
	assert.Equal(t, "INV-1002", sub.Rows[0].InvoiceNo)
	assert.Equal(t, "INV-1001", sub.Rows[1].InvoiceNo)
}

func TestCloneIsDeep(t *testing.T) {
	tbl := sampleTable()
	cp := tbl.Clone()
	cp.Rows[0].Set("Notes", "changed")
	cp.Rows[0].VendorEmail = "x@y.test"
	assert.Equal(t, "first", tbl.Rows[0].Get("Notes"))
	assert.Equal(t, "billing@acme.test", tbl.Rows[0].VendorEmail)
}
