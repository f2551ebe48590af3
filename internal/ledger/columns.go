package ledger

import (
	"fmt"

	"ledgerchat/internal/util"
)

const (
	FieldInvoiceNo   = "invoice_no"
	FieldVendorName  = "vendor_name"
	FieldVendorEmail = "vendor_email"
	FieldStatus      = "status"
	FieldAmount      = "amount"
	FieldCurrency    = "currency"
	FieldDueDate     = "due_date"
	FieldPaymentDate = "payment_date"
	FieldPONumber    = "po_number"
)

// CanonicalFields lists the fixed schema in the order missing columns are appended.
var CanonicalFields = []string{
	FieldInvoiceNo,
	FieldVendorName,
	FieldVendorEmail,
	FieldStatus,
	FieldAmount,
	FieldCurrency,
	FieldDueDate,
	FieldPaymentDate,
	FieldPONumber,
}

var fieldAliases = map[string][]string{
	FieldInvoiceNo: {
		"invoice no", "invoice number", "invoice num", "invoice nr", "invoice", "invoice id", "invoice ref",
		"inv", "inv no", "inv number", "inv num", "document no", "document number", "doc no", "doc number",
		"bill no", "bill number", "reference", "ref no",
	},
	FieldVendorName: {
		"vendor", "vendor name", "supplier", "supplier name", "payee", "payee name", "creditor",
		"company", "company name", "party name", "beneficiary",
	},
	FieldVendorEmail: {
		"vendor email", "vendor e mail", "vendor email address", "email", "e mail", "email address",
		"supplier email", "contact email", "mail",
	},
	FieldStatus: {
		"status", "payment status", "invoice status", "state", "paid status",
	},
	FieldAmount: {
		"amount", "invoice amount", "total", "total amount", "amount due", "gross amount", "net amount",
		"value", "invoice value", "invoice total", "balance", "amt",
	},
	FieldCurrency: {
		"currency", "curr", "ccy", "currency code", "cur",
	},
	FieldDueDate: {
		"due date", "due", "payment due", "payment due date", "due on", "date due", "maturity date",
	},
	FieldPaymentDate: {
		"payment date", "paid date", "date paid", "paid on", "pay date", "settlement date", "cleared date",
	},
	FieldPONumber: {
		"po number", "po", "po no", "po num", "purchase order", "purchase order number", "purchase order no",
	},
}

var aliasIndex = buildAliasIndex()

func buildAliasIndex() map[string]string {
	idx := map[string]string{}
	for field, aliases := range fieldAliases {
		// the canonical name itself ("due_date" -> "due date") keeps normalisation idempotent
		idx[util.NormalizeLabel(field)] = field
		for _, alias := range aliases {
			idx[util.NormalizeLabel(alias)] = field
		}
	}
	return idx
}

// CanonicalName returns the canonical field for a raw column label, or false
// when the label is not a known alias.
func CanonicalName(label string) (string, bool) {
	field, ok := aliasIndex[util.NormalizeLabel(label)]
	return field, ok
}

func IsCanonical(name string) bool {
	_, ok := fieldAliases[name]
	return ok
}

// NormalizeColumns maps raw labels onto canonical names and appends every
// canonical field that is still missing. Unmatched labels keep their text and
// position. When two labels resolve to the same field the first one wins and
// the later one is kept under a de-duplicated label.
func NormalizeColumns(labels []string) []string {
	out := make([]string, 0, len(labels)+len(CanonicalFields))
	used := map[string]bool{}
	for _, label := range labels {
		if field, ok := CanonicalName(label); ok && !used[field] {
			used[field] = true
			out = append(out, field)
			continue
		}
		name := label
		for n := 2; used[name]; n++ {
			name = fmt.Sprintf("%s (%d)", label, n)
		}
		used[name] = true
		out = append(out, name)
	}
	for _, field := range CanonicalFields {
		if !used[field] {
			used[field] = true
			out = append(out, field)
		}
	}
	return out
}
