package ingest

import (
	"bytes"
	"regexp"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

var rePDFCellSep = regexp.MustCompile(`\s*\|\s*|\t+|\s{2,}`)

// parsePDF reads the text layer only; scanned documents yield no header.
func parsePDF(content []byte) (RawTable, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return RawTable{}, err
	}

	var rows [][]string
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		for _, line := range splitLines(text) {
			if cells := splitPDFLine(line); len(cells) >= 2 {
				rows = append(rows, cells)
			}
		}
	}

	headers, data, err := splitHeader(rows)
	if err != nil {
		return RawTable{}, err
	}
	return RawTable{Headers: headers, Rows: data}, nil
}

func splitPDFLine(line string) []string {
	parts := rePDFCellSep.Split(strings.Trim(strings.TrimSpace(line), "|"), -1)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	parts := strings.Split(text, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
