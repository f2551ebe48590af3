package query

import (
	"regexp"
	"strings"

	"ledgerchat/internal/ledger"
)

var reDirectiveMarker = regexp.MustCompile(`(?i)^/?(?:add|update|set)[\s_-]+(?:vendor[\s_-]+)?e-?mails?\s*:?$`)

// directive is a bulk update block: a marker line followed by
// "vendor name: value" lines.
type directive struct {
	assignments []ledger.Assignment
	skipped     int
}

// parseDirective reports whether text is a bulk e-mail update. Lines without
// a colon are skipped and counted.
func parseDirective(text string) (directive, bool) {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if len(lines) == 0 || !reDirectiveMarker.MatchString(strings.TrimSpace(lines[0])) {
		return directive{}, false
	}

	d := directive{}
	for _, line := range lines[1:] {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		idx := strings.LastIndex(line, ":")
		if idx <= 0 {
			d.skipped++
			continue
		}
		name := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if name == "" || value == "" {
			d.skipped++
			continue
		}
		d.assignments = append(d.assignments, ledger.Assignment{Vendor: name, Value: value})
	}
	return d, true
}
