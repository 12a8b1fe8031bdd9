// Package models defines data structures for the scraper.
package models

import "time"

// Record represents one catalogue listing as it appears on a page.
type Record struct {
	Title    string `csv:"title" json:"Title"`
	Price    string `csv:"price" json:"Price"`
	Stock    string `csv:"stock" json:"Stock"`
	Rating   string `csv:"rating" json:"Rating"`
	ImageURL string `csv:"image_url" json:"Image URL"`
}

// State is the driver's position in a scrape run.
type State int

const (
	StateRunning State = iota
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Reasons a run stopped.
const (
	ReasonEmptyPage    = "empty_page"
	ReasonPageLimit    = "page_limit"
	ReasonRepeatedPage = "repeated_page"
	ReasonFetchFailed  = "fetch_failed"
	ReasonExtractError = "extract_failed"
	ReasonCanceled     = "canceled"
)

// RunResult holds the catalog and bookkeeping of one scrape run.
type RunResult struct {
	Records   []Record
	State     State
	Reason    string
	Err       error
	LastPage  int
	Fetches   int
	StartTime time.Time
	EndTime   time.Time
}

// Duration reports how long the run took.
func (r *RunResult) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}
