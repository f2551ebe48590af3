// Package ingest turns uploaded files into raw header/row tables and from
// there into ledger tables with canonical column names.
package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"ledgerchat/internal/ledger"
	"ledgerchat/internal/util"
)

var (
	ErrEmptyUpload       = errors.New("uploaded file is empty")
	ErrNoHeader          = errors.New("no header row found")
	ErrNoKnownColumns    = errors.New("no recognised invoice columns")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
	FormatEML  Format = "eml"
)

var formatByExt = map[string]Format{
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
	".xls":  FormatXLSX,
	".csv":  FormatCSV,
	".tsv":  FormatCSV,
	".txt":  FormatCSV,
	".html": FormatHTML,
	".htm":  FormatHTML,
	".pdf":  FormatPDF,
	".eml":  FormatEML,
}

// RawTable is one table as found in a file, before column normalisation.
type RawTable struct {
	Headers []string
	Rows    [][]string
	Source  string
	Format  Format
}

// DetectFormat picks the parser from the file extension. Files without an
// extension are sniffed.
func DetectFormat(filename string, content []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext != "" {
		if f, ok := formatByExt[ext]; ok {
			return f, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}

	head := bytes.TrimSpace(content)
	if len(head) > 512 {
		head = head[:512]
	}
	lower := bytes.ToLower(head)
	switch {
	case bytes.HasPrefix(content, []byte("PK\x03\x04")):
		return FormatXLSX, nil
	case bytes.HasPrefix(content, []byte("%PDF")):
		return FormatPDF, nil
	case bytes.HasPrefix(lower, []byte("<")):
		return FormatHTML, nil
	case looksLikeMail(lower):
		return FormatEML, nil
	default:
		return FormatCSV, nil
	}
}

func looksLikeMail(head []byte) bool {
	for _, h := range []string{"mime-version:", "received:", "message-id:", "from:", "return-path:"} {
		if bytes.HasPrefix(head, []byte(h)) {
			return true
		}
	}
	return false
}

// Parse reads every table a file carries. Spreadsheets, csv, html and pdf
// yield one table; a mail yields one per usable attachment.
func Parse(filename string, content []byte) ([]RawTable, error) {
	if len(bytes.TrimSpace(content)) == 0 {
		return nil, ErrEmptyUpload
	}
	format, err := DetectFormat(filename, content)
	if err != nil {
		return nil, err
	}

	var table RawTable
	switch format {
	case FormatEML:
		return parseEML(filename, content)
	case FormatXLSX:
		table, err = parseXLSX(content)
	case FormatCSV:
		table, err = parseCSV(content)
	case FormatHTML:
		table, err = parseHTML(string(content))
	case FormatPDF:
		table, err = parsePDF(content)
	}
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	table.Source = filepath.Base(filename)
	table.Format = format
	return []RawTable{table}, nil
}

// Load parses a file and returns the first table that looks like an
// invoice ledger, normalised to canonical columns.
func Load(filename string, content []byte, opts ledger.Options) (*ledger.Table, RawTable, error) {
	tables, err := Parse(filename, content)
	if err != nil {
		return nil, RawTable{}, err
	}
	raw, ok := pickLedger(tables)
	if !ok {
		return nil, RawTable{}, fmt.Errorf("%s: %w", filename, ErrNoKnownColumns)
	}
	t, err := ToTable(raw, opts)
	if err != nil {
		return nil, RawTable{}, err
	}
	return t, raw, nil
}

func pickLedger(tables []RawTable) (RawTable, bool) {
	for _, t := range tables {
		if DetectLedger(t.Headers).IsLedger {
			return t, true
		}
	}
	for _, t := range tables {
		if knownColumns(t.Headers) > 0 {
			return t, true
		}
	}
	return RawTable{}, false
}

// ToTable normalises the headers of raw. Blank headers become column_N. At
// least one header must map to a canonical field.
func ToTable(raw RawTable, opts ledger.Options) (*ledger.Table, error) {
	if len(raw.Headers) == 0 {
		return nil, ErrNoHeader
	}
	headers := make([]string, len(raw.Headers))
	for i, h := range raw.Headers {
		h = util.CollapseSpaces(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		headers[i] = h
	}
	if knownColumns(headers) == 0 {
		return nil, ErrNoKnownColumns
	}
	return ledger.FromRaw(headers, raw.Rows, opts), nil
}

func knownColumns(headers []string) int {
	seen := map[string]bool{}
	for _, h := range headers {
		if name, ok := ledger.CanonicalName(h); ok {
			seen[name] = true
		}
	}
	return len(seen)
}

// splitHeader picks the header among the first rows: the row naming the
// most canonical fields, else the first non-blank row.
func splitHeader(rows [][]string) ([]string, [][]string, error) {
	best, bestScore, firstNonBlank := -1, 0, -1
	limit := len(rows)
	if limit > 10 {
		limit = 10
	}
	for i := 0; i < limit; i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		if firstNonBlank < 0 {
			firstNonBlank = i
		}
		if score := knownColumns(rows[i]); score > bestScore {
			best, bestScore = i, score
		}
	}
	if best < 0 {
		best = firstNonBlank
	}
	if best < 0 {
		return nil, nil, ErrNoHeader
	}
	return trimCells(rows[best]), rows[best+1:], nil
}

func trimCells(cells []string) []string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = util.CollapseSpaces(c)
	}
	// trailing blank header cells carry no column
	for len(out) > 0 && out[len(out)-1] == "" {
		out = out[:len(out)-1]
	}
	return out
}

func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if !util.IsBlank(c) {
			return false
		}
	}
	return true
}
