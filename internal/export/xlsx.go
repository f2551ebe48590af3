package export

import (
	"io"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
)

var reconcileHeaders = []string{
	"line_no", "vendor", "amount", "payment_date", "reference",
	"match_status", "match_reason",
	"invoice_no", "invoice_vendor", "invoice_amount", "invoice_status", "invoice_due_date",
	"candidate2_invoice", "candidate_count",
}

// TableWorkbook lays a result set out on one sheet, canonical column names
// in the header row.
func TableWorkbook(t *ledger.Table) *excelize.File {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	if t == nil {
		return f
	}

	for i, h := range t.Columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	for i, r := range t.Rows {
		for c, v := range t.Values(r) {
			cell, _ := excelize.CoordinatesToCellName(c+1, i+2)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	return f
}

func WriteTable(t *ledger.Table, w io.Writer) error {
	f := TableWorkbook(t)
	defer f.Close()
	_, err := f.WriteTo(w)
	return err
}

func SaveTable(t *ledger.Table, outputPath string) error {
	f := TableWorkbook(t)
	defer f.Close()
	return save(f, outputPath)
}

func SaveReconciliation(rows []internal.ReconcileExportRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range reconcileHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, row := range rows {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, row.LineNo)
		set(2, row.Vendor)
		set(3, row.Amount)
		set(4, row.PaymentDate)
		set(5, row.Reference)
		set(6, row.MatchStatus)
		set(7, row.MatchReason)
		set(8, derefString(row.InvoiceNo))
		set(9, derefString(row.InvoiceVendor))
		set(10, derefString(row.InvoiceAmount))
		set(11, derefString(row.InvoiceStatus))
		set(12, derefString(row.InvoiceDueDate))
		set(13, derefString(row.Candidate2Invoice))
		set(14, row.CandidateCount)
	}

	return save(f, outputPath)
}

func save(f *excelize.File, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}

func derefString(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
