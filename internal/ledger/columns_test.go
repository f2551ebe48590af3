package ledger

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEveryAliasResolvesToItsField(t *testing.T) {
	for field, aliases := range fieldAliases {
		for _, alias := range aliases {
			variants := []string{alias, strings.ToUpper(alias), "  " + strings.ReplaceAll(alias, " ", "_") + " ", strings.ToUpper(alias[:1]) + alias[1:]}
			for _, v := range variants {
				got, ok := CanonicalName(v)
				require.Truef(t, ok, "alias %q not recognised", v)
				assert.Equalf(t, field, got, "alias %q", v)
			}
		}
	}
}

func TestNormalizeColumnsKnownSynonyms(t *testing.T) {
	for _, label := range []string{"Invoice Number", "Inv#", "Document No", "invoice_no"} {
		cols := NormalizeColumns([]string{label})
		assert.Equal(t, FieldInvoiceNo, cols[0], label)
	}
}

func TestNormalizeColumnsAddsMissingFields(t *testing.T) {
	cols := NormalizeColumns([]string{"Supplier", "Notes", "Total"})
	assert.Equal(t, []string{
		FieldVendorName, "Notes", FieldAmount,
		FieldInvoiceNo, FieldVendorEmail, FieldStatus, FieldCurrency, FieldDueDate, FieldPaymentDate, FieldPONumber,
	}, cols)
}

func TestNormalizeColumnsIsIdempotent(t *testing.T) {
	inputs := [][]string{
		{"Invoice Number", "Inv#", "Vendor", "Amount", "amount", "Notes", "Notes"},
		{"Due", "status", "State", ""},
		CanonicalFields,
	}
	for _, in := range inputs {
		once := NormalizeColumns(in)
		twice := NormalizeColumns(once)
		assert.Equal(t, once, twice)
	}
}

func TestNormalizeColumnsKeepsDuplicateUnderNewLabel(t *testing.T) {
	cols := NormalizeColumns([]string{"Amount", "amount", "Notes", "Notes"})
	assert.Equal(t, FieldAmount, cols[0])
	assert.Equal(t, "amount (2)", cols[1])
	assert.Equal(t, "Notes", cols[2])
	assert.Equal(t, "Notes (2)", cols[3])
}

func TestNormalizeColumnsIsNotFuzzy(t *testing.T) {
	cols := NormalizeColumns([]string{"Invoice Numbr"})
	assert.Equal(t, "Invoice Numbr", cols[0])
}
