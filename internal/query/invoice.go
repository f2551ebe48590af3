package query

import (
	"strings"

	"ledgerchat/internal/ledger"
	"ledgerchat/internal/util"
)

// ResolveInvoice finds the row for an invoice id: exact match on the
// normalised identifier first, then substring containment. The first row
// in store order wins in both passes.
func ResolveInvoice(t *ledger.Table, id string) (ledger.Record, bool) {
	key := util.NormalizeIdentifier(id)
	if key == "" || t == nil {
		return ledger.Record{}, false
	}
	for _, r := range t.Rows {
		if util.NormalizeIdentifier(r.InvoiceNo) == key {
			return r, true
		}
	}
	for _, r := range t.Rows {
		norm := util.NormalizeIdentifier(r.InvoiceNo)
		if norm != "" && strings.Contains(norm, key) {
			return r, true
		}
	}
	return ledger.Record{}, false
}

func answerInvoiceLookup(p prompt, s Session) (Response, Session) {
	sentences := make([]string, 0, len(p.invoiceIDs))
	var rows []ledger.Record
	for _, id := range p.invoiceIDs {
		r, ok := ResolveInvoice(s.Store, id)
		if !ok {
			sentences = append(sentences, notFoundAnswer(id))
			continue
		}
		sentences = append(sentences, invoiceFact(p.fact, id, r))
		rows = append(rows, r.Clone())
	}

	resp := Response{Answer: strings.Join(sentences, "\n\n"), Intent: IntentLookup}
	found := s.Store.WithRows(rows)
	resp.Result = nonEmpty(found)

	next := s
	next.CurrentFilter = found
	return resp, next
}
