package util

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	reThousandDot   = regexp.MustCompile(`^\d{1,3}(?:\.\d{3})+$`)
	reThousandComma = regexp.MustCompile(`^\d{1,3}(?:,\d{3})+(?:\.\d+)?$`)
	reCurrencyNoise = regexp.MustCompile(`(?i)[$€£¥₹]|\b(?:usd|eur|gbp|inr|jpy|aud|cad|chf|sgd)\b`)
)

// ParseAmount coerces a spreadsheet cell into a decimal. Anything that does
// not look like a number yields ok=false; callers treat that as "no amount".
func ParseAmount(input string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(input, "\u00A0", " ")
	s = reCurrencyNoise.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	if strings.HasPrefix(s, "-") {
		negative = !negative
		s = strings.TrimSpace(s[1:])
	}

	d, err := decimal.NewFromString(normalizeNumericToken(s))
	if err != nil {
		return decimal.Zero, false
	}
	if negative {
		d = d.Neg()
	}
	return d, true
}

// ParseThreshold parses a number typed in a prompt. Thousands separators are
// stripped; a comma is never a decimal mark here.
func ParseThreshold(token string) (decimal.Decimal, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(token), ",", "")
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func normalizeNumericToken(token string) string {
	compact := strings.ReplaceAll(token, " ", "")
	compact = strings.ReplaceAll(compact, "'", "")
	if reThousandDot.MatchString(compact) {
		return strings.ReplaceAll(compact, ".", "")
	}
	if reThousandComma.MatchString(compact) {
		return strings.ReplaceAll(compact, ",", "")
	}
	if strings.Contains(compact, ",") && !strings.Contains(compact, ".") {
		return strings.ReplaceAll(compact, ",", ".")
	}
	if strings.Contains(compact, ",") && strings.Contains(compact, ".") {
		// 1.234,56
		if strings.LastIndex(compact, ",") > strings.LastIndex(compact, ".") {
			compact = strings.ReplaceAll(compact, ".", "")
			return strings.ReplaceAll(compact, ",", ".")
		}
		return strings.ReplaceAll(compact, ",", "")
	}
	return compact
}
