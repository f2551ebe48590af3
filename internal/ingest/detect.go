package ingest

import "ledgerchat/internal/ledger"

type DetectResult struct {
	IsLedger bool
	Score    float64
	Reason   string
}

var detectWeights = map[string]float64{
	ledger.FieldInvoiceNo:   0.35,
	ledger.FieldAmount:      0.30,
	ledger.FieldVendorName:  0.20,
	ledger.FieldDueDate:     0.10,
	ledger.FieldStatus:      0.05,
	ledger.FieldVendorEmail: 0.05,
	ledger.FieldCurrency:    0.05,
	ledger.FieldPaymentDate: 0.05,
	ledger.FieldPONumber:    0.05,
}

// DetectLedger scores how much a header row looks like an accounts-payable
// ledger. Mail attachments that score low are skipped.
func DetectLedger(headers []string) DetectResult {
	seen := map[string]bool{}
	score := 0.0
	for _, h := range headers {
		name, ok := ledger.CanonicalName(h)
		if !ok || seen[name] {
			continue
		}
		seen[name] = true
		score += detectWeights[name]
	}
	if score > 1 {
		score = 1
	}

	isLedger := score >= 0.5 && (seen[ledger.FieldInvoiceNo] || seen[ledger.FieldAmount])
	reason := "rules_negative"
	if isLedger {
		reason = "rules_positive"
	}
	return DetectResult{IsLedger: isLedger, Score: score, Reason: reason}
}
