package query

import (
	"ledgerchat/internal/ledger"
)

// rule is one entry of the dispatch table. Rules are tried in order and the
// first match answers.
type rule struct {
	name    string
	matches func(p prompt, s Session) bool
	answer  func(p prompt, s Session) (Response, Session)
}

var rules = []rule{
	{name: "empty_store", matches: isEmptyStore, answer: answerUploadFirst},
	{name: "blank_prompt", matches: isBlankPrompt, answer: answerBlank},
	{name: "bulk_update", matches: isDirective, answer: answerDirective},
	{name: "current_filter", matches: isFollowUp, answer: answerFollowUp},
	{name: "invoice_lookup", matches: hasInvoiceIDs, answer: answerInvoiceLookup},
	{name: "broad_filter", matches: always, answer: answerBroad},
}

func isBlankPrompt(p prompt, _ Session) bool { return p.text == "" }

func isEmptyStore(_ prompt, s Session) bool { return s.Store.Empty() }

func isDirective(p prompt, _ Session) bool { return p.directive != nil }

func isFollowUp(p prompt, _ Session) bool { return p.followUp }

func hasInvoiceIDs(p prompt, _ Session) bool { return len(p.invoiceIDs) > 0 }

func always(prompt, Session) bool { return true }

func answerBlank(_ prompt, s Session) (Response, Session) {
	return Response{Answer: msgEmptyPrompt, Intent: IntentNone}, s
}

func answerUploadFirst(_ prompt, s Session) (Response, Session) {
	return Response{Answer: msgUploadFirst, Intent: IntentUploadNeeded}, s
}

// answerDirective applies the bulk update to the store and, independently,
// to the cached current filter so follow-ups see the new addresses.
func answerDirective(p prompt, s Session) (Response, Session) {
	d := p.directive
	if len(d.assignments) == 0 {
		return Response{Answer: msgEmptyDirective, Intent: IntentUpdate}, s
	}

	store, report := ledger.AssignEmails(s.Store, d.assignments)
	resp := Response{Answer: updateAnswer(report, d.skipped), Intent: IntentUpdate}
	if report.RowCount() == 0 {
		return resp, s
	}

	next := s
	next.Store = store
	if s.CurrentFilter != nil {
		next.CurrentFilter, _ = ledger.AssignEmails(s.CurrentFilter, d.assignments)
	}
	resp.Result = store.SelectRows(report.Rows)
	resp.StoreChanged = true
	return resp, next
}

// answerFollowUp runs the prompt's intent over the cached current filter
// without filtering again.
func answerFollowUp(p prompt, s Session) (Response, Session) {
	if s.CurrentFilter == nil {
		return Response{Answer: msgNoCurrentFilter, Intent: IntentNoFilterCache}, s
	}
	return summarize(p.intent, s.CurrentFilter), s
}

func answerBroad(p prompt, s Session) (Response, Session) {
	rows := runFilters(toWorkingRows(s.Store), p, s.Settings)
	filtered := s.Store.WithRows(records(rows))

	next := s
	next.CurrentFilter = filtered
	return summarize(p.intent, filtered), next
}

// summarize applies the email / sum / count intent to an already filtered table.
func summarize(intent Intent, t *ledger.Table) Response {
	switch intent {
	case IntentEmails:
		emails := collectEmails(t.Rows)
		if t.Empty() || len(emails) == 0 {
			return Response{Answer: msgNoEmails, Intent: IntentEmails, Result: nonEmpty(t)}
		}
		return Response{Answer: emailsAnswer(emails), Intent: IntentEmails, Result: t}
	case IntentSum:
		if t.Empty() {
			return Response{Answer: msgNoResults, Intent: IntentSum}
		}
		total, currency := sumAmounts(t.Rows)
		return Response{Answer: sumAnswer(t.Len(), total, currency), Intent: IntentSum, Result: t}
	default:
		if t.Empty() {
			return Response{Answer: msgNoResults, Intent: IntentCount}
		}
		return Response{Answer: countAnswer(t.Len()), Intent: IntentCount, Result: t}
	}
}

func nonEmpty(t *ledger.Table) *ledger.Table {
	if t.Empty() {
		return nil
	}
	return t
}
