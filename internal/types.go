package internal

type MatchStatus string

type MatchReason string

const (
	MatchOK       MatchStatus = "OK"
	MatchReview   MatchStatus = "REVIEW"
	MatchNotFound MatchStatus = "NOT_FOUND"

	ReasonInvoiceNo    MatchReason = "INVOICE_NO"
	ReasonVendorAmount MatchReason = "VENDOR_AMOUNT"
	ReasonAmountOnly   MatchReason = "AMOUNT_ONLY"
	ReasonAlreadyPaid  MatchReason = "ALREADY_PAID"
	ReasonNone         MatchReason = "NONE"
)

type EmailStatus string

const (
	EmailFetched EmailStatus = "fetched"
	EmailLoaded  EmailStatus = "loaded"
	EmailSkipped EmailStatus = "skipped"
	EmailFailed  EmailStatus = "failed"
)

type DatasetRow struct {
	ID        string
	Name      string
	Source    string
	Format    string
	Checksum  string
	Columns   []string
	RowCount  int
	CreatedAt string
}

type SessionRow struct {
	ID        string
	DatasetID string

	// CurrentFilter holds source row numbers; nil when no filter is cached.
	CurrentFilter []int
	CreatedAt     string
	UpdatedAt     string
}

type QueryLogRow struct {
	ID         int
	SessionID  string
	Prompt     string
	Rule       string
	Intent     string
	Answer     string
	ResultRows int
	CreatedAt  string
}

type EmailRow struct {
	ID         int
	Provider   string
	MessageID  string
	Subject    string
	Sender     string
	ReceivedAt string
	Hash       string
	Status     string
	RawRef     string
	SessionID  *string
}

type FetchedMailMessage struct {
	Provider   string
	MessageID  string
	Subject    string
	From       string
	ReceivedAt string
	Raw        []byte
}

type ReconcileExportRow struct {
	LineNo            int
	Vendor            string
	Amount            string
	PaymentDate       string
	Reference         string
	MatchStatus       string
	MatchReason       string
	InvoiceNo         *string
	InvoiceVendor     *string
	InvoiceAmount     *string
	InvoiceStatus     *string
	InvoiceDueDate    *string
	Candidate2Invoice *string
	CandidateCount    int
}
