package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignEmailsMatchesVendorCaseInsensitively(t *testing.T) {
	tbl := FromRaw(
		[]string{"Invoice", "Vendor", "Amount"},
		[][]string{
			{"INV1", "Acme Corp", "10"},
			{"INV2", "ACME CORP ", "20"},
			{"INV3", "Acme Corporation", "30"},
			{"INV4", "Globex", "40"},
		},
		Options{},
	)

	updated, report := AssignEmails(tbl, []Assignment{
		{Vendor: "acme corp", Value: " ap@acme.test "},
		{Vendor: "Initech", Value: "ap@initech.test"},
	})

	require.NotNil(t, updated)
	assert.Equal(t, "ap@acme.test", updated.Rows[0].VendorEmail)
	assert.Equal(t, "ap@acme.test", updated.Rows[1].VendorEmail)
	assert.Equal(t, "", updated.Rows[2].VendorEmail, "exact name match only")
	assert.Equal(t, "", tbl.Rows[0].VendorEmail, "source table untouched")

	assert.Equal(t, []string{"acme corp"}, report.Vendors)
	assert.Equal(t, 2, report.Updated["acme corp"])
	assert.Equal(t, []string{"Initech"}, report.Unmatched)
	assert.Equal(t, []int{1, 2}, report.Rows)
}
