// Package query answers free-text questions about an invoice table.
//
// Evaluate is a pure function of (prompt, Session): the store, the cached
// current filter and the settings travel in the Session value, and any
// change to them comes back in the returned Session.
package query

import (
	"time"

	"ledgerchat/internal/ledger"
)

type Settings struct {
	// DefaultTopN applies to a bare "oldest"/"newest" directive.
	DefaultTopN int
	// Today is the reference day for "overdue". Zero means the wall clock.
	Today time.Time
}

func (s Settings) today() time.Time {
	if s.Today.IsZero() {
		return time.Now().UTC()
	}
	return s.Today
}

func (s Settings) topN() int {
	if s.DefaultTopN <= 0 {
		return 10
	}
	return s.DefaultTopN
}

type Session struct {
	Store         *ledger.Table
	CurrentFilter *ledger.Table
	Settings      Settings
}

type Intent string

const (
	IntentNone          Intent = "none"
	IntentUploadNeeded  Intent = "upload_needed"
	IntentUpdate        Intent = "update"
	IntentLookup        Intent = "lookup"
	IntentEmails        Intent = "emails"
	IntentSum           Intent = "sum"
	IntentCount         Intent = "count"
	IntentNoFilterCache Intent = "no_current_filter"
)

// Response is what the caller renders. Result is nil when there is no
// result set to show.
type Response struct {
	Answer       string        `json:"answer"`
	Result       *ledger.Table `json:"-"`
	Intent       Intent        `json:"intent"`
	Rule         string        `json:"rule"`
	StoreChanged bool          `json:"store_changed"`
}

// Evaluate runs the first rule whose trigger matches the prompt.
func Evaluate(text string, s Session) (Response, Session) {
	p := parsePrompt(text, s.Settings)
	for _, r := range rules {
		if !r.matches(p, s) {
			continue
		}
		resp, next := r.answer(p, s)
		resp.Rule = r.name
		return resp, next
	}
	// the broad rule always matches; this is unreachable
	return Response{Answer: msgNoResults, Intent: IntentNone}, s
}
