package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"ledgerchat/internal/ledger"
	"ledgerchat/internal/util"
)

const (
	msgEmptyPrompt     = "Please enter a question."
	msgUploadFirst     = "Please upload data first."
	msgNoResults       = "No results found for your filters."
	msgNoEmails        = "No emails found for the requested criteria."
	msgNoCurrentFilter = "No current filter. Run a filtering query first."
	msgEmptyDirective  = "No vendor emails found in the update command. Use one 'vendor: email' line per vendor."
)

func countAnswer(n int) string {
	return fmt.Sprintf("Found %d invoices matching your filters.", n)
}

func emailsAnswer(emails []string) string {
	return fmt.Sprintf("Found %d unique vendor emails: %s", len(emails), strings.Join(emails, ", "))
}

func sumAnswer(n int, total decimal.Decimal, currency string) string {
	out := fmt.Sprintf("Total amount for %d matching invoices: %s", n, total.StringFixed(2))
	if currency != "" {
		out += " " + currency
	}
	return out
}

func notFoundAnswer(id string) string {
	return fmt.Sprintf("Could not find invoice %s.", id)
}

func updateAnswer(report ledger.UpdateReport, skipped int) string {
	var b strings.Builder
	if report.RowCount() > 0 {
		fmt.Fprintf(&b, "Updated vendor emails on %d rows for %d vendors.", report.RowCount(), len(report.Vendors))
	} else {
		b.WriteString("No rows were updated.")
	}
	for _, v := range report.Unmatched {
		fmt.Fprintf(&b, "\nNo rows found for vendor %q.", v)
	}
	if skipped > 0 {
		fmt.Fprintf(&b, "\nSkipped %d lines without a 'vendor: email' pair.", skipped)
	}
	return b.String()
}

// invoiceFact phrases the answer about one resolved invoice.
func invoiceFact(kind factKind, id string, r ledger.Record) string {
	label := r.InvoiceNo
	if strings.TrimSpace(label) == "" {
		label = id
	}

	switch kind {
	case factEmail:
		if util.IsBlank(r.VendorEmail) {
			return fmt.Sprintf("No vendor email is recorded for invoice %s.", label)
		}
		return fmt.Sprintf("The vendor email for invoice %s is %s.", label, strings.TrimSpace(r.VendorEmail))
	case factAmount:
		amount, ok := r.AmountValue()
		if !ok {
			return fmt.Sprintf("Invoice %s has no valid amount recorded.", label)
		}
		return strings.TrimSpace(fmt.Sprintf("Invoice %s amount is %s %s", label, amount.StringFixed(2), r.Currency)) + "."
	case factCurrency:
		if util.IsBlank(r.Currency) {
			return fmt.Sprintf("Invoice %s has no currency recorded.", label)
		}
		return fmt.Sprintf("Invoice %s is billed in %s.", label, r.Currency)
	case factDueDate:
		due, ok := r.Due()
		if !ok {
			return fmt.Sprintf("Invoice %s has no due date recorded.", label)
		}
		return fmt.Sprintf("Invoice %s is due on %s.", label, util.FormatDate(due))
	case factPaymentDate:
		paid, ok := r.Paid()
		if !ok {
			return fmt.Sprintf("Invoice %s has no payment date recorded.", label)
		}
		return fmt.Sprintf("Invoice %s was paid on %s.", label, util.FormatDate(paid))
	default:
		return statusSentence(label, r)
	}
}

func statusSentence(label string, r ledger.Record) string {
	status := strings.TrimSpace(r.Status)
	switch {
	case r.IsPaid():
		return fmt.Sprintf("Invoice %s is PAID.", label)
	case status != "":
		return fmt.Sprintf("Invoice %s is %s.", label, strings.ToUpper(status))
	default:
		return fmt.Sprintf("Invoice %s has status UNKNOWN.", label)
	}
}

// collectEmails keeps the first spelling of each address, drops blanks and
// sorts case-insensitively.
func collectEmails(rows []ledger.Record) []string {
	seen := map[string]bool{}
	var out []string
	for _, r := range rows {
		email := strings.TrimSpace(r.VendorEmail)
		if email == "" {
			continue
		}
		key := strings.ToLower(email)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, email)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return strings.ToLower(out[i]) < strings.ToLower(out[j])
	})
	return out
}

// sumAmounts totals coercible amounts and reports the shared currency, if any.
func sumAmounts(rows []ledger.Record) (decimal.Decimal, string) {
	total := decimal.Zero
	currency := ""
	mixed := false
	for _, r := range rows {
		v, ok := r.AmountValue()
		if !ok {
			continue
		}
		total = total.Add(v)
		c := strings.ToUpper(strings.TrimSpace(r.Currency))
		switch {
		case c == "" || mixed:
		case currency == "":
			currency = c
		case currency != c:
			mixed = true
		}
	}
	if mixed {
		currency = ""
	}
	return total, currency
}
