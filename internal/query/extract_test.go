package query

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractInvoiceIDs(t *testing.T) {
	got := ExtractInvoiceIDs("status of INV-1001, inv-1001 and PO#778 for ap@inv99.test; top10 usd100 invoices")
	assert.Equal(t, []string{"INV-1001", "PO#778"}, got)

	assert.Empty(t, ExtractInvoiceIDs("how many open invoices over 500"))
	assert.Empty(t, ExtractInvoiceIDs("invoices due before 2024-01-31"))
}

func TestExtractDate(t *testing.T) {
	d, ok := ExtractDate("due before 2024-3-5 please")
	require.True(t, ok)
	assert.Equal(t, "2024-03-05", d.Format("2006-01-02"))

	d, ok = ExtractDate("on 31/12/2023")
	require.True(t, ok)
	assert.Equal(t, "2023-12-31", d.Format("2006-01-02"))

	_, ok = ExtractDate("before 2024-13-45")
	assert.False(t, ok)
	_, ok = ExtractDate("no date here")
	assert.False(t, ok)
}

func TestExtractTopN(t *testing.T) {
	cases := []struct {
		text string
		want TopN
	}{
		{"2 oldest invoices", TopN{Direction: Oldest, Limit: 2}},
		{"top 5 newest", TopN{Direction: Newest, Limit: 5}},
		{"oldest 3 invoices", TopN{Direction: Oldest, Limit: 3}},
		{"newest invoices", TopN{Direction: Newest, Limit: 7}},
		{"oldest 2024-01-01", TopN{Direction: Oldest, Limit: 7}},
		{"invoices due after 2024-01-05 newest", TopN{Direction: Newest, Limit: 7}},
		{"before 05/03/2024 oldest", TopN{Direction: Oldest, Limit: 7}},
		{"invoices over 500 oldest", TopN{Direction: Oldest, Limit: 7}},
		{"invoices under $2,500 newest", TopN{Direction: Newest, Limit: 7}},
		{"amount >= 99.50 oldest", TopN{Direction: Oldest, Limit: 7}},
		{"over 500 and 2 oldest", TopN{Direction: Oldest, Limit: 2}},
		{"all invoices", TopN{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ExtractTopN(tc.text, 7), tc.text)
	}
}

func TestExtractAmountBounds(t *testing.T) {
	b := ExtractAmountBounds("invoices over $1,000 and below 5000.25")
	require.NotNil(t, b.Min)
	require.NotNil(t, b.Max)
	assert.True(t, b.Min.Equal(decimal.NewFromInt(1000)))
	assert.True(t, b.Max.Equal(decimal.RequireFromString("5000.25")))

	b = ExtractAmountBounds(">= 250")
	require.NotNil(t, b.Min)
	assert.True(t, b.Min.Equal(decimal.NewFromInt(250)))
	assert.Nil(t, b.Max)

	b = ExtractAmountBounds("due over 2024-01-01")
	assert.Nil(t, b.Min)
}

func TestExtractVendor(t *testing.T) {
	cases := map[string]string{
		"unpaid invoices for the Acme Corp invoices over 100": "Acme Corp",
		"emails for unpaid invoices":                          "",
		"invoices for Acme due before 2024-01-01":             "Acme",
		"total for Globex, please":                            "Globex",
		"how many invoices":                                   "",
	}
	for text, want := range cases {
		assert.Equal(t, want, ExtractVendor(text), text)
	}
}

func TestParseDirective(t *testing.T) {
	d, ok := parseDirective("Set vendor emails:\nAcme Corp: ap@acme.test\n\nGlobex : a@b.test\nno colon here")
	require.True(t, ok)
	assert.Equal(t, 1, d.skipped)
	got := d.assignments
	require.Len(t, got, 2)
	assert.Equal(t, "Acme Corp", got[0].Vendor)
	assert.Equal(t, "ap@acme.test", got[0].Value)
	assert.Equal(t, "Globex", got[1].Vendor)

	_, ok = parseDirective("how many emails")
	assert.False(t, ok)
}
