package util

import (
	"regexp"
	"strings"
)

var (
	reNonAlnum = regexp.MustCompile(`[^a-z0-9]+`)
	reSpaces   = regexp.MustCompile(`\s+`)
)

// NormalizeLabel lowercases a column label and collapses every run of
// non-alphanumerics into a single space: "Inv#" -> "inv", "Due_Date" -> "due date".
func NormalizeLabel(input string) string {
	s := strings.ToLower(input)
	s = reNonAlnum.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// NormalizeIdentifier strips case and separators so that "INV-1001",
// "inv 1001" and "Inv1001" share one key.
func NormalizeIdentifier(input string) string {
	out := strings.Builder{}
	for _, r := range strings.ToUpper(input) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			out.WriteRune(r)
		}
	}
	return out.String()
}

func CollapseSpaces(input string) string {
	s := strings.ReplaceAll(input, "\u00A0", " ")
	return strings.TrimSpace(reSpaces.ReplaceAllString(s, " "))
}

func IsBlank(input string) bool {
	return strings.TrimSpace(input) == ""
}

func IsAlpha(input string) bool {
	if input == "" {
		return false
	}
	for _, r := range input {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
