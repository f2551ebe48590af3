package ledger

import (
	"strings"
)

// Assignment sets a field value on every row whose vendor name matches
// Vendor case-insensitively (surrounding spaces ignored).
type Assignment struct {
	Vendor string
	Value  string
}

type UpdateReport struct {
	// Updated counts touched rows per vendor, keyed by the vendor as given.
	Updated   map[string]int
	Vendors   []string
	Unmatched []string
	Rows      []int
}

func (r UpdateReport) RowCount() int {
	return len(r.Rows)
}

// AssignField returns a copy of t with field set per assignment. t is left
// untouched so callers decide whether the result replaces their store.
func AssignField(t *Table, field string, assignments []Assignment) (*Table, UpdateReport) {
	report := UpdateReport{Updated: map[string]int{}}
	if t == nil {
		for _, a := range assignments {
			report.Unmatched = append(report.Unmatched, a.Vendor)
		}
		return nil, report
	}

	out := t.Clone()
	touched := map[int]bool{}
	for _, a := range assignments {
		key := strings.ToLower(strings.TrimSpace(a.Vendor))
		if key == "" {
			continue
		}
		hits := 0
		for i := range out.Rows {
			if strings.ToLower(strings.TrimSpace(out.Rows[i].VendorName)) != key {
				continue
			}
			out.Rows[i].Set(field, strings.TrimSpace(a.Value))
			hits++
			if !touched[out.Rows[i].Row] {
				touched[out.Rows[i].Row] = true
				report.Rows = append(report.Rows, out.Rows[i].Row)
			}
		}
		if hits == 0 {
			report.Unmatched = append(report.Unmatched, a.Vendor)
			continue
		}
		if _, seen := report.Updated[a.Vendor]; !seen {
			report.Vendors = append(report.Vendors, a.Vendor)
		}
		report.Updated[a.Vendor] += hits
	}
	return out, report
}

// AssignEmails is AssignField for vendor_email.
func AssignEmails(t *Table, assignments []Assignment) (*Table, UpdateReport) {
	return AssignField(t, FieldVendorEmail, assignments)
}
