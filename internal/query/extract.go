package query

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"ledgerchat/internal/util"
)

var (
	reInvoiceID = regexp.MustCompile(`(?i)\b[a-z]{2,}[-_/#]?\d[a-z0-9]*(?:[-_/][a-z0-9]+)*\b`)
	reEmailAddr = regexp.MustCompile(`\S+@\S+`)
	reDate      = regexp.MustCompile(`\b(\d{4}[-/]\d{1,2}[-/]\d{1,2}|\d{1,2}[-/]\d{1,2}[-/]\d{2,4})\b`)

	reTopLeading  = regexp.MustCompile(`(?i)\b(?:top\s+)?(\d+)\s+(oldest|newest)\b`)
	reTopTrailing = regexp.MustCompile(`(?i)\b(oldest|newest)\s+(?:top\s+)?(\d+)\b([-/.]\d)?`)
	reTopBare     = regexp.MustCompile(`(?i)\b(oldest|newest)\b`)
	reAmountLead  = regexp.MustCompile(`(?i)(?:(?:\b(?:over|above|under|below|greater\s+than|more\s+than|less\s+than|at\s+least|at\s+most)|[<>]=?)\s*[$€£]?|[$€£])\s*$`)

	reAmountMin = regexp.MustCompile(`(?i)(?:\b(?:over|above|greater\s+than|more\s+than|at\s+least)\s+|>=?\s*)[$€£]?\s*(\d[\d,]*(?:\.\d+)?)`)
	reAmountMax = regexp.MustCompile(`(?i)(?:\b(?:under|below|less\s+than|at\s+most)\s+|<=?\s*)[$€£]?\s*(\d[\d,]*(?:\.\d+)?)`)

	reFor         = regexp.MustCompile(`(?i)\bfor\b`)
	reVendorStop  = regexp.MustCompile(`[.,;:!?\n]`)
	reCurrencyAmt = regexp.MustCompile(`(?i)^(?:usd|eur|gbp|inr|jpy|aud|cad|chf|sgd)\d+(?:[.,]\d+)?$`)
	reKeywordNum  = regexp.MustCompile(`(?i)^(?:top|first|last|over|under|above|below|oldest|newest)\d+$`)
)

// invoiceStoplist holds domain words that must never be read as an invoice id.
var invoiceStoplist = map[string]bool{
	"inv": true, "invoice": true, "invoices": true, "open": true, "paid": true, "unpaid": true,
	"pending": true, "overdue": true, "due": true, "over": true, "under": true, "above": true,
	"below": true, "total": true, "sum": true, "email": true, "emails": true, "oldest": true,
	"newest": true, "top": true, "vendor": true, "vendors": true, "amount": true, "status": true,
	"before": true, "after": true, "since": true,
}

var vendorStopWords = map[string]bool{
	"over": true, "above": true, "under": true, "below": true, "greater": true, "less": true,
	"more": true, "before": true, "after": true, "since": true, "on": true, "due": true,
	"with": true, "and": true, "that": true, "which": true, "where": true, "from": true,
	"between": true, "oldest": true, "newest": true, "top": true, "sorted": true, "for": true,
	"at": true, "whose": true, ">": true, ">=": true, "<": true, "<=": true,
}

var vendorLeadingNoise = map[string]bool{
	"the": true, "all": true, "my": true, "our": true, "any": true, "vendor": true, "supplier": true,
	"invoices": true, "invoice": true, "bills": true, "bill": true, "unpaid": true, "paid": true,
	"open": true, "pending": true, "overdue": true, "outstanding": true,
}

var vendorTrailingNoise = map[string]bool{
	"invoices": true, "invoice": true, "bills": true, "bill": true, "rows": true, "records": true,
	"items": true, "please": true, "only": true,
}

// ExtractInvoiceIDs returns distinct invoice-like tokens in first-seen order.
// Purely alphabetic tokens and stoplisted words are never returned.
func ExtractInvoiceIDs(text string) []string {
	cleaned := reEmailAddr.ReplaceAllString(text, " ")
	seen := map[string]bool{}
	var out []string
	for _, tok := range reInvoiceID.FindAllString(cleaned, -1) {
		lower := strings.ToLower(tok)
		if util.IsAlpha(tok) || invoiceStoplist[lower] || reCurrencyAmt.MatchString(tok) || reKeywordNum.MatchString(tok) {
			continue
		}
		if seen[lower] {
			continue
		}
		seen[lower] = true
		out = append(out, tok)
	}
	return out
}

// ExtractDate finds the first date literal in text. An unparseable literal
// yields ok=false.
func ExtractDate(text string) (time.Time, bool) {
	m := reDate.FindString(text)
	if m == "" {
		return time.Time{}, false
	}
	return util.ParseDate(m)
}

type Direction int

const (
	NoOrder Direction = iota
	Oldest
	Newest
)

func (d Direction) String() string {
	switch d {
	case Oldest:
		return "oldest"
	case Newest:
		return "newest"
	default:
		return "none"
	}
}

type TopN struct {
	Direction Direction
	Limit     int
}

func (t TopN) Present() bool {
	return t.Direction != NoOrder
}

// ExtractTopN reads an oldest/newest directive and its optional count.
func ExtractTopN(text string, defaultLimit int) TopN {
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	for _, loc := range reTopLeading.FindAllStringSubmatchIndex(text, -1) {
		if inLiteral(text, loc[2]) {
			continue
		}
		if n, err := strconv.Atoi(text[loc[2]:loc[3]]); err == nil && n > 0 {
			return TopN{Direction: parseDirection(text[loc[4]:loc[5]]), Limit: n}
		}
	}
	if m := reTopTrailing.FindStringSubmatch(text); m != nil && m[3] == "" {
		if n, err := strconv.Atoi(m[2]); err == nil && n > 0 {
			return TopN{Direction: parseDirection(m[1]), Limit: n}
		}
	}
	if m := reTopBare.FindStringSubmatch(text); m != nil {
		return TopN{Direction: parseDirection(m[1]), Limit: defaultLimit}
	}
	return TopN{}
}

// inLiteral reports whether the number starting at i belongs to a date or an
// amount rather than to a top-N count.
func inLiteral(text string, i int) bool {
	if i > 0 && strings.IndexByte("-/.,", text[i-1]) >= 0 {
		return true
	}
	return reAmountLead.MatchString(text[:i])
}

func parseDirection(word string) Direction {
	if strings.EqualFold(word, "newest") {
		return Newest
	}
	return Oldest
}

type AmountBounds struct {
	Min *decimal.Decimal
	Max *decimal.Decimal
}

// ExtractAmountBounds scans independently for a lower and an upper bound.
func ExtractAmountBounds(text string) AmountBounds {
	return AmountBounds{
		Min: firstAmount(reAmountMin, text),
		Max: firstAmount(reAmountMax, text),
	}
}

func firstAmount(re *regexp.Regexp, text string) *decimal.Decimal {
	for _, loc := range re.FindAllStringSubmatchIndex(text, -1) {
		end := loc[3]
		// "over 2024-01-01" is a date comparison, not an amount
		if end+1 < len(text) && (text[end] == '-' || text[end] == '/') && isDigit(text[end+1]) {
			continue
		}
		if v, ok := util.ParseThreshold(text[loc[2]:loc[3]]); ok {
			return &v
		}
	}
	return nil
}

// ExtractVendor returns the words after "for", cut at the next punctuation
// or filter keyword, with status words and generic nouns trimmed off.
func ExtractVendor(text string) string {
	for _, loc := range reFor.FindAllStringIndex(text, -1) {
		rest := text[loc[1]:]
		if stop := reVendorStop.FindStringIndex(rest); stop != nil {
			rest = rest[:stop[0]]
		}
		if name := cleanVendor(strings.Fields(rest)); name != "" {
			return name
		}
	}
	return ""
}

func cleanVendor(words []string) string {
	cut := len(words)
	for i, w := range words {
		if vendorStopWords[strings.ToLower(w)] || reDate.MatchString(w) {
			cut = i
			break
		}
	}
	words = words[:cut]
	for len(words) > 0 && vendorLeadingNoise[strings.ToLower(words[0])] {
		words = words[1:]
	}
	for len(words) > 0 && vendorTrailingNoise[strings.ToLower(words[len(words)-1])] {
		words = words[:len(words)-1]
	}
	return strings.Join(words, " ")
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
