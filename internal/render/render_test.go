package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/query"
)

func sample(n int) *ledger.Table {
	rows := make([][]string, n)
	for i := range rows {
		rows[i] = []string{"INV-" + string(rune('A'+i)), "Acme", "10"}
	}
	return ledger.FromRaw([]string{"Invoice No", "Vendor", "Amount"}, rows, ledger.Options{DefaultCurrency: "USD"})
}

func TestResponsePrintsAnswerAndTable(t *testing.T) {
	buf := &bytes.Buffer{}
	Response(buf, query.Response{Answer: "Found 2 invoices matching your filters.", Result: sample(2)})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "Found 2 invoices matching your filters.\n"))
	assert.Contains(t, out, "invoice_no")
	assert.Contains(t, out, "INV-B")
}

func TestResponseWithoutResult(t *testing.T) {
	buf := &bytes.Buffer{}
	Response(buf, query.Response{Answer: "Please upload data first."})
	assert.Equal(t, "Please upload data first.\n", buf.String())
}

func TestTableTruncates(t *testing.T) {
	buf := &bytes.Buffer{}
	Table(buf, sample(5), 3)

	out := buf.String()
	assert.Contains(t, out, "INV-C")
	assert.NotContains(t, out, "INV-D")
	assert.Contains(t, out, "... 2 more rows")
}

func TestReconciliation(t *testing.T) {
	buf := &bytes.Buffer{}
	inv := "INV-1"
	Reconciliation(buf, []internal.ReconcileExportRow{{LineNo: 1, Vendor: "Acme", Amount: "10.00", MatchStatus: "OK", MatchReason: "VENDOR_AMOUNT", InvoiceNo: &inv, CandidateCount: 1}})
	assert.Contains(t, buf.String(), "VENDOR_AMOUNT")
	assert.Contains(t, buf.String(), "INV-1")
}
