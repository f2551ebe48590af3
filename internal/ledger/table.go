package ledger

import (
	"strings"

	"ledgerchat/internal/util"
)

// Table is the in-memory store for one uploaded dataset.
type Table struct {
	Columns []string
	Rows    []Record
}

type Options struct {
	// DefaultCurrency fills currency cells that are blank in the source.
	DefaultCurrency string
}

// FromRaw normalises headers and turns raw cells into records. Rows without
// any non-blank cell are skipped; short rows are padded with blanks.
func FromRaw(headers []string, rows [][]string, opts Options) *Table {
	columns := NormalizeColumns(headers)
	t := &Table{Columns: columns, Rows: make([]Record, 0, len(rows))}

	for i, raw := range rows {
		if blankRow(raw) {
			continue
		}
		rec := Record{Row: i + 1}
		for c := 0; c < len(headers) && c < len(columns); c++ {
			value := ""
			if c < len(raw) {
				value = util.CollapseSpaces(raw[c])
			}
			rec.Set(columns[c], value)
		}
		for _, col := range columns[len(headers):] {
			rec.Set(col, "")
		}
		if strings.TrimSpace(rec.Currency) == "" {
			rec.Currency = opts.DefaultCurrency
		}
		t.Rows = append(t.Rows, rec)
	}
	return t
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

func (t *Table) Empty() bool {
	return t.Len() == 0
}

func (t *Table) Clone() *Table {
	if t == nil {
		return nil
	}
	out := &Table{Columns: append([]string(nil), t.Columns...), Rows: make([]Record, len(t.Rows))}
	for i, r := range t.Rows {
		out.Rows[i] = r.Clone()
	}
	return out
}

// WithRows returns a table that shares this table's schema but holds rows.
func (t *Table) WithRows(rows []Record) *Table {
	return &Table{Columns: append([]string(nil), t.Columns...), Rows: rows}
}

// Values returns the cells of r in column order.
func (t *Table) Values(r Record) []string {
	out := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		out[i] = r.Get(col)
	}
	return out
}

func (t *Table) RowNumbers() []int {
	if t == nil {
		return nil
	}
	out := make([]int, len(t.Rows))
	for i, r := range t.Rows {
		out[i] = r.Row
	}
	return out
}

// SelectRows rebuilds a subset from source row numbers, keeping the order of nums.
// Numbers that no longer exist are ignored.
func (t *Table) SelectRows(nums []int) *Table {
	byRow := make(map[int]Record, len(t.Rows))
	for _, r := range t.Rows {
		byRow[r.Row] = r
	}
	rows := make([]Record, 0, len(nums))
	for _, n := range nums {
		if r, ok := byRow[n]; ok {
			rows = append(rows, r.Clone())
		}
	}
	return t.WithRows(rows)
}

func blankRow(cells []string) bool {
	for _, c := range cells {
		if !util.IsBlank(c) {
			return false
		}
	}
	return true
}
