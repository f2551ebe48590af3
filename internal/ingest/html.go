package ingest

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ledgerchat/internal/util"
)

// parseHTML reads the first table with a header row and at least one data
// row. Tables that name a canonical field win over earlier ones that don't.
func parseHTML(html string) (RawTable, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return RawTable{}, err
	}

	var found, fallback *RawTable
	doc.Find("table").EachWithBreak(func(_ int, table *goquery.Selection) bool {
		rows := table.Find("tr")
		if rows.Length() < 2 {
			return true
		}

		cells := make([][]string, 0, rows.Length())
		rows.Each(func(_ int, row *goquery.Selection) {
			var line []string
			row.Find("th,td").Each(func(_ int, cell *goquery.Selection) {
				line = append(line, util.CollapseSpaces(cell.Text()))
			})
			cells = append(cells, line)
		})

		headers, data, err := splitHeader(cells)
		if err != nil {
			return true
		}
		t := &RawTable{Headers: headers, Rows: data}
		if knownColumns(headers) > 0 {
			found = t
			return false
		}
		if fallback == nil {
			fallback = t
		}
		return true
	})

	switch {
	case found != nil:
		return *found, nil
	case fallback != nil:
		return *fallback, nil
	default:
		return RawTable{}, ErrNoHeader
	}
}
