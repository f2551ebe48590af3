// Package render prints answers and result sets for terminal use.
package render

import (
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/query"
)

// maxRows caps how many result rows are printed; the rest is summarised.
const maxRows = 50

func Response(w io.Writer, resp query.Response) {
	fmt.Fprintln(w, resp.Answer)
	if resp.Result != nil && !resp.Result.Empty() {
		fmt.Fprintln(w)
		Table(w, resp.Result, maxRows)
	}
}

// Table writes t as a text grid. limit <= 0 prints every row.
func Table(w io.Writer, t *ledger.Table, limit int) {
	tw := newWriter(w)
	tw.SetHeader(t.Columns)

	rows := t.Rows
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	for _, r := range rows {
		tw.Append(t.Values(r))
	}
	tw.Render()

	if hidden := t.Len() - len(rows); hidden > 0 {
		fmt.Fprintf(w, "... %d more rows\n", hidden)
	}
}

func Sessions(w io.Writer, sessions []internal.SessionRow, active string) {
	tw := newWriter(w)
	tw.SetHeader([]string{"", "session", "dataset", "updated"})
	for _, s := range sessions {
		marker := ""
		if s.ID == active {
			marker = "*"
		}
		tw.Append([]string{marker, s.ID, s.DatasetID, s.UpdatedAt})
	}
	tw.Render()
}

func Reconciliation(w io.Writer, rows []internal.ReconcileExportRow) {
	tw := newWriter(w)
	tw.SetHeader([]string{"line", "vendor", "amount", "status", "reason", "invoice", "candidates"})
	for _, r := range rows {
		invoice := ""
		if r.InvoiceNo != nil {
			invoice = *r.InvoiceNo
		}
		tw.Append([]string{
			fmt.Sprint(r.LineNo), r.Vendor, r.Amount, r.MatchStatus, r.MatchReason, invoice, fmt.Sprint(r.CandidateCount),
		})
	}
	tw.Render()
}

func UpdateReport(w io.Writer, report ledger.UpdateReport) {
	tw := newWriter(w)
	tw.SetHeader([]string{"vendor", "rows"})
	for _, v := range report.Vendors {
		tw.Append([]string{v, fmt.Sprint(report.Updated[v])})
	}
	for _, v := range report.Unmatched {
		tw.Append([]string{v, "no match"})
	}
	tw.Render()
}

func newWriter(w io.Writer) *tablewriter.Table {
	tw := tablewriter.NewWriter(w)
	tw.SetAutoWrapText(false)
	tw.SetAutoFormatHeaders(false)
	return tw
}
