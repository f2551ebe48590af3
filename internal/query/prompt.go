package query

import (
	"regexp"
	"strings"
	"time"
)

var (
	reEmailIntent = regexp.MustCompile(`(?i)\be-?mails?\b`)
	reSumIntent   = regexp.MustCompile(`(?i)\b(?:sum|total)\b`)

	reFactAmount      = regexp.MustCompile(`(?i)\b(?:amount|how\s+much|value|total|sum|cost|owed?)\b`)
	reFactCurrency    = regexp.MustCompile(`(?i)\bcurrency\b`)
	reFactDue         = regexp.MustCompile(`(?i)\bdue\b`)
	reFactPaymentDate = regexp.MustCompile(`(?i)\bpayment\s+date\b|\bpaid\s+on\b|\bdate\s+paid\b|\bpay\s+date\b|\bwhen\b.*\bpaid\b`)

	reBefore = regexp.MustCompile(`(?i)\bbefore\b`)
	reAfter  = regexp.MustCompile(`(?i)\b(?:after|since|over)\b`)
	reOn     = regexp.MustCompile(`(?i)\bon\b`)

	reRelationWord = regexp.MustCompile(`(?i)\b(before|after|since|over|on)\b`)

	reUnpaid  = regexp.MustCompile(`(?i)\bunpaid\b|\boutstanding\b|\bnot\s+paid\b`)
	reOverdue = regexp.MustCompile(`(?i)\boverdue\b|\bpast\s+due\b`)
	rePaid    = regexp.MustCompile(`(?i)\bpaid\b`)
	reOpen    = regexp.MustCompile(`(?i)\bopen\b`)
	rePending = regexp.MustCompile(`(?i)\bpending\b`)

	reCurrentFilter = regexp.MustCompile(`(?i)\bcurrent\s+(?:filter|selection|results?)\b|\b(?:last|previous)\s+results?\b`)
)

type factKind int

const (
	factStatus factKind = iota
	factEmail
	factAmount
	factCurrency
	factDueDate
	factPaymentDate
)

type dateRelation int

const (
	dateNone dateRelation = iota
	dateBefore
	dateAfter
	dateOn
)

type statusFilter int

const (
	statusAny statusFilter = iota
	statusUnpaid
	statusOverdue
	statusPaid
	statusOpen
	statusPending
)

// prompt is a free-text question with every trigger resolved up front, so
// each rule and filter step only reads fields.
type prompt struct {
	text       string
	invoiceIDs []string
	date       time.Time
	hasDate    bool
	relation   dateRelation
	top        TopN
	bounds     AmountBounds
	vendor     string
	status     statusFilter
	intent     Intent
	fact       factKind
	followUp   bool
	directive  *directive
}

func parsePrompt(text string, settings Settings) prompt {
	p := prompt{text: strings.TrimSpace(text)}
	if p.text == "" {
		return p
	}
	if d, ok := parseDirective(p.text); ok {
		p.directive = &d
		return p
	}

	p.invoiceIDs = ExtractInvoiceIDs(p.text)
	p.date, p.hasDate = ExtractDate(p.text)
	p.top = ExtractTopN(p.text, settings.topN())
	p.bounds = ExtractAmountBounds(p.text)
	p.followUp = reCurrentFilter.MatchString(p.text)
	if !p.followUp {
		p.vendor = ExtractVendor(p.text)
	}
	p.status = detectStatus(p.text)
	p.intent = detectIntent(p.text)
	p.fact = detectFact(p.text)
	if p.hasDate {
		p.relation = detectRelation(p.text)
	}
	return p
}

func detectIntent(text string) Intent {
	switch {
	case reEmailIntent.MatchString(text):
		return IntentEmails
	case reSumIntent.MatchString(text):
		return IntentSum
	default:
		return IntentCount
	}
}

// detectFact picks what a single-invoice question asks about. The order is
// fixed: email, amount, currency, due date, payment date, else status.
func detectFact(text string) factKind {
	switch {
	case reEmailIntent.MatchString(text):
		return factEmail
	case reFactAmount.MatchString(text):
		return factAmount
	case reFactCurrency.MatchString(text):
		return factCurrency
	case reFactDue.MatchString(text):
		return factDueDate
	case reFactPaymentDate.MatchString(text):
		return factPaymentDate
	default:
		return factStatus
	}
}

// detectRelation prefers the relation word closest before the date literal,
// so "over 1000 due on 2024-03-01" compares on the day, not after it.
func detectRelation(text string) dateRelation {
	if loc := reDate.FindStringIndex(text); loc != nil {
		words := reRelationWord.FindAllString(text[:loc[0]], -1)
		if len(words) > 0 {
			switch strings.ToLower(words[len(words)-1]) {
			case "before":
				return dateBefore
			case "on":
				return dateOn
			default:
				return dateAfter
			}
		}
	}
	switch {
	case reBefore.MatchString(text):
		return dateBefore
	case reAfter.MatchString(text):
		return dateAfter
	case reOn.MatchString(text):
		return dateOn
	default:
		return dateNone
	}
}

func detectStatus(text string) statusFilter {
	switch {
	case reUnpaid.MatchString(text):
		return statusUnpaid
	case reOverdue.MatchString(text):
		return statusOverdue
	case rePaid.MatchString(text):
		return statusPaid
	case reOpen.MatchString(text):
		return statusOpen
	case rePending.MatchString(text):
		return statusPending
	default:
		return statusAny
	}
}
