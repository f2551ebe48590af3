package query

import (
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerchat/internal/ledger"
	"ledgerchat/internal/util"
)

// row carries a record with its amount and due date coerced once.
type row struct {
	rec       ledger.Record
	amount    decimal.Decimal
	hasAmount bool
	due       time.Time
	hasDue    bool
}

type filterStep struct {
	name  string
	apply func(rows []row, p prompt, settings Settings) []row
}

// filterSteps is the broad-query pipeline. The oldest/newest pass runs both
// before and after the value filters, so "3 oldest invoices for acme" keeps
// the acme rows among the three oldest overall.
var filterSteps = []filterStep{
	{name: "order", apply: orderStep},
	{name: "amount_min", apply: amountMinStep},
	{name: "amount_max", apply: amountMaxStep},
	{name: "status", apply: statusStep},
	{name: "vendor", apply: vendorStep},
	{name: "due_date", apply: dueDateStep},
	{name: "order_again", apply: orderStep},
}

func toWorkingRows(t *ledger.Table) []row {
	out := make([]row, 0, t.Len())
	for _, r := range t.Rows {
		w := row{rec: r}
		w.amount, w.hasAmount = r.AmountValue()
		w.due, w.hasDue = r.Due()
		out = append(out, w)
	}
	return out
}

func records(rows []row) []ledger.Record {
	out := make([]ledger.Record, len(rows))
	for i, w := range rows {
		out[i] = w.rec.Clone()
	}
	return out
}

func runFilters(rows []row, p prompt, settings Settings) []row {
	for _, step := range filterSteps {
		rows = step.apply(rows, p, settings)
	}
	return rows
}

func keep(rows []row, pred func(row) bool) []row {
	out := make([]row, 0, len(rows))
	for _, w := range rows {
		if pred(w) {
			out = append(out, w)
		}
	}
	return out
}

// orderStep sorts by due date and truncates to the limit. Rows without a
// due date sort last in both directions.
func orderStep(rows []row, p prompt, _ Settings) []row {
	if !p.top.Present() {
		return rows
	}
	sorted := append([]row(nil), rows...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.hasDue != b.hasDue {
			return a.hasDue
		}
		if !a.hasDue {
			return false
		}
		if p.top.Direction == Newest {
			return a.due.After(b.due)
		}
		return a.due.Before(b.due)
	})
	if p.top.Limit > 0 && len(sorted) > p.top.Limit {
		sorted = sorted[:p.top.Limit]
	}
	return sorted
}

func amountMinStep(rows []row, p prompt, _ Settings) []row {
	if p.bounds.Min == nil {
		return rows
	}
	lo := *p.bounds.Min
	return keep(rows, func(w row) bool { return w.hasAmount && w.amount.GreaterThanOrEqual(lo) })
}

func amountMaxStep(rows []row, p prompt, _ Settings) []row {
	if p.bounds.Max == nil {
		return rows
	}
	hi := *p.bounds.Max
	return keep(rows, func(w row) bool { return w.hasAmount && w.amount.LessThanOrEqual(hi) })
}

func statusStep(rows []row, p prompt, settings Settings) []row {
	switch p.status {
	case statusUnpaid:
		return keep(rows, func(w row) bool { return !w.rec.IsPaid() })
	case statusOverdue:
		today := util.DateOnly(settings.today())
		return keep(rows, func(w row) bool {
			return !w.rec.IsPaid() && w.hasDue && util.DateOnly(w.due).Before(today)
		})
	case statusPaid:
		return keep(rows, func(w row) bool { return w.rec.IsPaid() })
	case statusOpen:
		return keep(rows, statusEquals("open"))
	case statusPending:
		return keep(rows, statusEquals("pending"))
	default:
		return rows
	}
}

func statusEquals(want string) func(row) bool {
	return func(w row) bool { return strings.EqualFold(strings.TrimSpace(w.rec.Status), want) }
}

// vendorStep prefers an exact case-insensitive name match and only falls
// back to substring matching when nothing matches exactly.
func vendorStep(rows []row, p prompt, _ Settings) []row {
	if p.vendor == "" {
		return rows
	}
	want := strings.TrimSpace(p.vendor)
	exact := keep(rows, func(w row) bool { return strings.EqualFold(strings.TrimSpace(w.rec.VendorName), want) })
	if len(exact) > 0 {
		return exact
	}
	return keep(rows, func(w row) bool { return util.ContainsFold(w.rec.VendorName, want) })
}

func dueDateStep(rows []row, p prompt, _ Settings) []row {
	if !p.hasDate || p.relation == dateNone {
		return rows
	}
	target := util.DateOnly(p.date)
	return keep(rows, func(w row) bool {
		if !w.hasDue {
			return false
		}
		due := util.DateOnly(w.due)
		switch p.relation {
		case dateBefore:
			return due.Before(target)
		case dateAfter:
			return due.After(target)
		default:
			return util.SameDay(due, target)
		}
	})
}
