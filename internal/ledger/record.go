package ledger

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerchat/internal/util"
)

// Record is one invoice row. Canonical fields are always present; source
// columns outside the fixed schema are carried in Extra under their label.
type Record struct {
	Row         int               `json:"row"`
	InvoiceNo   string            `json:"invoice_no"`
	VendorName  string            `json:"vendor_name"`
	VendorEmail string            `json:"vendor_email"`
	Status      string            `json:"status"`
	Amount      string            `json:"amount"`
	Currency    string            `json:"currency"`
	DueDate     string            `json:"due_date"`
	PaymentDate string            `json:"payment_date"`
	PONumber    string            `json:"po_number"`
	Extra       map[string]string `json:"extra,omitempty"`
}

func (r Record) Get(column string) string {
	switch column {
	case FieldInvoiceNo:
		return r.InvoiceNo
	case FieldVendorName:
		return r.VendorName
	case FieldVendorEmail:
		return r.VendorEmail
	case FieldStatus:
		return r.Status
	case FieldAmount:
		return r.Amount
	case FieldCurrency:
		return r.Currency
	case FieldDueDate:
		return r.DueDate
	case FieldPaymentDate:
		return r.PaymentDate
	case FieldPONumber:
		return r.PONumber
	default:
		return r.Extra[column]
	}
}

func (r *Record) Set(column, value string) {
	switch column {
	case FieldInvoiceNo:
		r.InvoiceNo = value
	case FieldVendorName:
		r.VendorName = value
	case FieldVendorEmail:
		r.VendorEmail = value
	case FieldStatus:
		r.Status = value
	case FieldAmount:
		r.Amount = value
	case FieldCurrency:
		r.Currency = value
	case FieldDueDate:
		r.DueDate = value
	case FieldPaymentDate:
		r.PaymentDate = value
	case FieldPONumber:
		r.PONumber = value
	default:
		if r.Extra == nil {
			r.Extra = map[string]string{}
		}
		r.Extra[column] = value
	}
}

// AmountValue coerces the stored amount text; ok is false for blanks and junk.
func (r Record) AmountValue() (decimal.Decimal, bool) {
	return util.ParseAmount(r.Amount)
}

func (r Record) Due() (time.Time, bool) {
	return util.ParseDate(r.DueDate)
}

func (r Record) Paid() (time.Time, bool) {
	return util.ParseDate(r.PaymentDate)
}

func (r Record) IsPaid() bool {
	return strings.EqualFold(strings.TrimSpace(r.Status), "paid")
}

func (r Record) Clone() Record {
	out := r
	if r.Extra != nil {
		out.Extra = make(map[string]string, len(r.Extra))
		for k, v := range r.Extra {
			out.Extra[k] = v
		}
	}
	return out
}
