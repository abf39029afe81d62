package tiktok

// NotAvailable marks a metric that no extraction strategy could resolve.
const NotAvailable = "N/A"

// MaxTopComments bounds VideoRecord.TopComments.
const MaxTopComments = 3

// VideoRecord is the best-effort result of scraping one video page.
// Views and Likes hold the raw display text ("1.2M") or NotAvailable.
type VideoRecord struct {
	URL         string
	Views       string
	Likes       string
	TopComments []string
}

// Partial reports whether any metric is unresolved.
func (r VideoRecord) Partial() bool {
	return r.Views == NotAvailable || r.Likes == NotAvailable
}

// SessionIdentity is the browser identity used for one run.
type SessionIdentity struct {
	UserAgent string
	Locale    string
}
