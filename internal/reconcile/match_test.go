package reconcile

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
)

func invoices() *ledger.Table {
	return ledger.FromRaw(
		[]string{"Invoice No", "Vendor", "Status", "Amount", "Due Date"},
		[][]string{
			{"INV-1", "Acme", "Open", "100", "2024-01-10"},
			{"INV-2", "Acme", "Paid", "250", "2024-01-20"},
			{"INV-3", "Globex", "Open", "100", "2024-02-01"},
			{"INV-4", "Initech", "Open", "75", "2024-03-01"},
			{"INV-5", "Initech", "Open", "75", "2024-03-15"},
		},
		ledger.Options{DefaultCurrency: "USD"},
	)
}

func payments() []Payment {
	t := ledger.FromRaw(
		[]string{"Reference", "Payee", "Amount", "Payment Date"},
		[][]string{
			{"", "Acme", "100.00", "2024-01-11"},
			{"inv 4", "Initech", "75", ""},
			{"", "Acme", "250", ""},
			{"", "Umbrella", "100", "2024-01-30"},
			{"", "Initech", "75", ""},
			{"", "Acme", "999", ""},
			{"", "acme corp", "100.0049", ""},
			{"", "Acme", "", ""},
		},
		ledger.Options{},
	)
	return PaymentsFromTable(t)
}

func TestRun(t *testing.T) {
	results := Run(invoices(), payments(), 0.01)
	require.Len(t, results, 8)

	cases := []struct {
		status  internal.MatchStatus
		reason  internal.MatchReason
		invoice string
		cands   int
	}{
		{internal.MatchOK, internal.ReasonVendorAmount, "INV-1", 1},
		{internal.MatchOK, internal.ReasonInvoiceNo, "INV-4", 1},
		{internal.MatchReview, internal.ReasonAlreadyPaid, "INV-2", 1},
		{internal.MatchReview, internal.ReasonAmountOnly, "", 2},
		{internal.MatchReview, internal.ReasonVendorAmount, "", 2},
		{internal.MatchNotFound, internal.ReasonNone, "", 0},
		{internal.MatchOK, internal.ReasonVendorAmount, "INV-1", 1},
		{internal.MatchNotFound, internal.ReasonNone, "", 0},
	}
	for i, tc := range cases {
		res := results[i]
		assert.Equal(t, tc.status, res.Status, "line %d", i+1)
		assert.Equal(t, tc.reason, res.Reason, "line %d", i+1)
		assert.Len(t, res.Candidates, tc.cands, "line %d", i+1)
		if tc.invoice == "" {
			assert.Nil(t, res.Invoice, "line %d", i+1)
			continue
		}
		require.NotNil(t, res.Invoice, "line %d", i+1)
		assert.Equal(t, tc.invoice, res.Invoice.InvoiceNo, "line %d", i+1)
	}

	// amount-only candidates are ordered by distance to the payment date
	assert.Equal(t, "INV-3", results[3].Candidates[0].InvoiceNo)

	s := Summarize(results)
	assert.Equal(t, Summary{OK: 3, Review: 3, NotFound: 2}, s)
}

func TestSingleAmountOnlyMatchCarriesInvoice(t *testing.T) {
	res := NewMatcher(invoices(), 0).Match(Payment{Line: 1, Vendor: "Nobody", Amount: decimal.RequireFromString("250"), HasAmount: true})
	assert.Equal(t, internal.MatchReview, res.Status)
	assert.Equal(t, internal.ReasonAmountOnly, res.Reason)
	require.NotNil(t, res.Invoice)
	assert.Equal(t, "INV-2", res.Invoice.InvoiceNo)
}

func TestReferenceWithWrongAmountNeedsReview(t *testing.T) {
	res := NewMatcher(invoices(), 0.01).Match(Payment{Reference: "INV-3", Amount: decimal.RequireFromString("90"), HasAmount: true})
	assert.Equal(t, internal.MatchReview, res.Status)
	assert.Equal(t, internal.ReasonInvoiceNo, res.Reason)
}

func TestExportRowsOrdersByStatus(t *testing.T) {
	rows := ExportRows(Run(invoices(), payments(), 0.01))
	require.Len(t, rows, 8)
	assert.Equal(t, "OK", rows[0].MatchStatus)
	assert.Equal(t, "NOT_FOUND", rows[len(rows)-1].MatchStatus)
	assert.Equal(t, 1, rows[0].LineNo)
	require.NotNil(t, rows[0].InvoiceNo)
	assert.Equal(t, "INV-1", *rows[0].InvoiceNo)
	assert.Equal(t, "100.00", rows[0].Amount)
	assert.Equal(t, "2024-01-11", rows[0].PaymentDate)
}
