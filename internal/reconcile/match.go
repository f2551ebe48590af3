// Package reconcile matches payment lines against invoices.
package reconcile

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerchat/internal"
	"ledgerchat/internal/ledger"
	"ledgerchat/internal/util"
)

const maxCandidates = 5

type Payment struct {
	Line      int
	Vendor    string
	Amount    decimal.Decimal
	HasAmount bool
	Date      time.Time
	HasDate   bool
	Reference string
}

// PaymentsFromTable reads payment lines from a normalised table: vendor,
// amount, payment date (due date as fallback) and the invoice number as
// reference.
func PaymentsFromTable(t *ledger.Table) []Payment {
	out := make([]Payment, 0, t.Len())
	for _, r := range t.Rows {
		p := Payment{Line: r.Row, Vendor: strings.TrimSpace(r.VendorName), Reference: strings.TrimSpace(r.InvoiceNo)}
		p.Amount, p.HasAmount = r.AmountValue()
		if p.Date, p.HasDate = r.Paid(); !p.HasDate {
			p.Date, p.HasDate = r.Due()
		}
		out = append(out, p)
	}
	return out
}

type Result struct {
	Payment    Payment
	Status     internal.MatchStatus
	Reason     internal.MatchReason
	Invoice    *ledger.Record
	Candidates []ledger.Record
}

type Matcher struct {
	tolerance decimal.Decimal
	invoices  []ledger.Record
	amounts   []decimal.Decimal
	hasAmount []bool
	byID      map[string][]int
	byVendor  map[string][]int
}

func NewMatcher(invoices *ledger.Table, tolerance float64) *Matcher {
	m := &Matcher{
		tolerance: decimal.NewFromFloat(tolerance).Abs(),
		byID:      map[string][]int{},
		byVendor:  map[string][]int{},
	}
	if invoices == nil {
		return m
	}
	for i, r := range invoices.Rows {
		m.invoices = append(m.invoices, r)
		amount, ok := r.AmountValue()
		m.amounts = append(m.amounts, amount)
		m.hasAmount = append(m.hasAmount, ok)
		if id := util.NormalizeIdentifier(r.InvoiceNo); id != "" {
			m.byID[id] = append(m.byID[id], i)
		}
		if v := vendorKey(r.VendorName); v != "" {
			m.byVendor[v] = append(m.byVendor[v], i)
		}
	}
	return m
}

func (m *Matcher) Match(p Payment) Result {
	if ref := util.NormalizeIdentifier(p.Reference); ref != "" {
		if hits := m.byID[ref]; len(hits) == 1 {
			i := hits[0]
			if p.HasAmount && m.amountMatches(i, p.Amount) {
				return m.adjustForPaid(m.single(p, internal.MatchOK, internal.ReasonInvoiceNo, i))
			}
			return m.single(p, internal.MatchReview, internal.ReasonInvoiceNo, i)
		}
	}
	if !p.HasAmount {
		return Result{Payment: p, Status: internal.MatchNotFound, Reason: internal.ReasonNone}
	}

	byVendor := m.withAmount(m.vendorCandidates(p.Vendor), p.Amount)
	if len(byVendor) > 1 {
		if open := m.unpaid(byVendor); len(open) == 1 {
			byVendor = open
		}
	}
	switch {
	case len(byVendor) == 1:
		return m.adjustForPaid(m.single(p, internal.MatchOK, internal.ReasonVendorAmount, byVendor[0]))
	case len(byVendor) > 1:
		return m.many(p, internal.ReasonVendorAmount, byVendor)
	}

	// amount-only matches across every vendor are never trusted on their own
	all := make([]int, len(m.invoices))
	for i := range all {
		all[i] = i
	}
	if byAmount := m.withAmount(all, p.Amount); len(byAmount) > 0 {
		res := m.many(p, internal.ReasonAmountOnly, byAmount)
		if len(byAmount) == 1 {
			inv := m.invoices[byAmount[0]].Clone()
			res.Invoice = &inv
		}
		return res
	}

	return Result{Payment: p, Status: internal.MatchNotFound, Reason: internal.ReasonNone}
}

// vendorCandidates prefers an exact name match and falls back to substring
// containment in either direction.
func (m *Matcher) vendorCandidates(vendor string) []int {
	key := vendorKey(vendor)
	if key == "" {
		return nil
	}
	if exact := m.byVendor[key]; len(exact) > 0 {
		return exact
	}
	var out []int
	for i, r := range m.invoices {
		name := vendorKey(r.VendorName)
		if name != "" && (strings.Contains(name, key) || strings.Contains(key, name)) {
			out = append(out, i)
		}
	}
	return out
}

func (m *Matcher) withAmount(idx []int, amount decimal.Decimal) []int {
	var out []int
	for _, i := range idx {
		if m.amountMatches(i, amount) {
			out = append(out, i)
		}
	}
	return out
}

func (m *Matcher) amountMatches(i int, amount decimal.Decimal) bool {
	return m.hasAmount[i] && m.amounts[i].Sub(amount).Abs().LessThanOrEqual(m.tolerance)
}

func (m *Matcher) unpaid(idx []int) []int {
	var out []int
	for _, i := range idx {
		if !m.invoices[i].IsPaid() {
			out = append(out, i)
		}
	}
	return out
}

func (m *Matcher) single(p Payment, status internal.MatchStatus, reason internal.MatchReason, i int) Result {
	inv := m.invoices[i].Clone()
	return Result{Payment: p, Status: status, Reason: reason, Invoice: &inv, Candidates: []ledger.Record{inv}}
}

func (m *Matcher) many(p Payment, reason internal.MatchReason, idx []int) Result {
	candidates := make([]ledger.Record, 0, len(idx))
	for _, i := range idx {
		candidates = append(candidates, m.invoices[i].Clone())
	}
	if p.HasDate {
		sortByDueDistance(candidates, p.Date)
	}
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return Result{Payment: p, Status: internal.MatchReview, Reason: reason, Candidates: candidates}
}

// adjustForPaid downgrades a match against an invoice already marked paid.
func (m *Matcher) adjustForPaid(base Result) Result {
	if base.Invoice == nil || !base.Invoice.IsPaid() {
		return base
	}
	base.Status = internal.MatchReview
	base.Reason = internal.ReasonAlreadyPaid
	return base
}

func sortByDueDistance(records []ledger.Record, date time.Time) {
	distance := func(r ledger.Record) (time.Duration, bool) {
		due, ok := r.Due()
		if !ok {
			return 0, false
		}
		d := due.Sub(util.DateOnly(date))
		if d < 0 {
			d = -d
		}
		return d, true
	}
	sort.SliceStable(records, func(i, j int) bool {
		di, oki := distance(records[i])
		dj, okj := distance(records[j])
		if oki != okj {
			return oki
		}
		return oki && di < dj
	})
}

func vendorKey(name string) string {
	return strings.ToLower(util.CollapseSpaces(name))
}

// Run matches every payment and returns the results in payment order.
func Run(invoices *ledger.Table, payments []Payment, tolerance float64) []Result {
	m := NewMatcher(invoices, tolerance)
	out := make([]Result, 0, len(payments))
	for _, p := range payments {
		out = append(out, m.Match(p))
	}
	return out
}

type Summary struct {
	OK       int
	Review   int
	NotFound int
}

func Summarize(results []Result) Summary {
	var s Summary
	for _, r := range results {
		switch r.Status {
		case internal.MatchOK:
			s.OK++
		case internal.MatchReview:
			s.Review++
		default:
			s.NotFound++
		}
	}
	return s
}

// ExportRows flattens results for the xlsx report, OK first, then REVIEW,
// then NOT_FOUND, each by payment line.
func ExportRows(results []Result) []internal.ReconcileExportRow {
	rows := make([]internal.ReconcileExportRow, 0, len(results))
	for _, r := range results {
		row := internal.ReconcileExportRow{
			LineNo:         r.Payment.Line,
			Vendor:         r.Payment.Vendor,
			Reference:      r.Payment.Reference,
			MatchStatus:    string(r.Status),
			MatchReason:    string(r.Reason),
			CandidateCount: len(r.Candidates),
		}
		if r.Payment.HasAmount {
			row.Amount = r.Payment.Amount.StringFixed(2)
		}
		if r.Payment.HasDate {
			row.PaymentDate = util.FormatDate(r.Payment.Date)
		}
		if inv := r.Invoice; inv != nil {
			row.InvoiceNo = util.StringPtr(inv.InvoiceNo)
			row.InvoiceVendor = util.StringPtr(inv.VendorName)
			row.InvoiceAmount = util.StringPtr(inv.Amount)
			row.InvoiceStatus = util.StringPtr(inv.Status)
			row.InvoiceDueDate = util.StringPtr(inv.DueDate)
		}
		if len(r.Candidates) > 1 {
			row.Candidate2Invoice = util.StringPtr(r.Candidates[1].InvoiceNo)
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return statusRank(rows[i].MatchStatus) < statusRank(rows[j].MatchStatus)
	})
	return rows
}

func statusRank(status string) int {
	switch internal.MatchStatus(status) {
	case internal.MatchOK:
		return 1
	case internal.MatchReview:
		return 2
	default:
		return 3
	}
}
