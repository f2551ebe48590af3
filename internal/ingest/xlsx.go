package ingest

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// parseXLSX reads the first sheet whose header names a canonical field,
// falling back to the first sheet with any content.
func parseXLSX(content []byte) (RawTable, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return RawTable{}, err
	}
	defer f.Close()

	var fallback *RawTable
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil || len(rows) == 0 {
			continue
		}
		headers, data, err := splitHeader(rows)
		if err != nil {
			continue
		}
		t := RawTable{Headers: headers, Rows: data}
		if knownColumns(headers) > 0 {
			return t, nil
		}
		if fallback == nil {
			fallback = &t
		}
	}
	if fallback == nil {
		return RawTable{}, fmt.Errorf("workbook: %w", ErrNoHeader)
	}
	return *fallback, nil
}
