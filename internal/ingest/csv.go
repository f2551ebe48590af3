package ingest

import (
	"bytes"
	"encoding/csv"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func parseCSV(content []byte) (RawTable, error) {
	content = bytes.TrimPrefix(content, utf8BOM)

	r := csv.NewReader(bytes.NewReader(content))
	r.Comma = sniffDelimiter(content)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true

	rows, err := r.ReadAll()
	if err != nil {
		return RawTable{}, err
	}
	headers, data, err := splitHeader(rows)
	if err != nil {
		return RawTable{}, err
	}
	return RawTable{Headers: headers, Rows: data}, nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the
// first non-blank line.
func sniffDelimiter(content []byte) rune {
	first := ""
	for _, line := range strings.Split(string(content), "\n") {
		if strings.TrimSpace(line) != "" {
			first = line
			break
		}
	}
	best, bestCount := ',', 0
	for _, d := range []rune{',', ';', '\t', '|'} {
		if n := strings.Count(first, string(d)); n > bestCount {
			best, bestCount = d, n
		}
	}
	return best
}
