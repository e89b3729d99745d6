package batch

import (
	"fmt"
	"time"
)

type State int

const (
	// StatePending is a record that was never processed, usually because
	// the batch was cancelled first.
	StatePending State = iota
	StateExtracted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateExtracted:
		return "extracted"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// IdentifierError is returned when no url could be formulated for a record.
type IdentifierError struct {
	Column string
	// Missing is set when the record has no value for Column at all.
	Missing bool
	Err     error
}

func (e *IdentifierError) Error() string {
	if e.Missing {
		return fmt.Sprintf("identifier column %q not found", e.Column)
	}
	return e.Err.Error()
}

func (e *IdentifierError) Unwrap() error {
	return e.Err
}

// ExtractionError is returned when the page was fetched but the bounded
// text could not be found in it.
type ExtractionError struct {
	URL string
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s, check %s manually", e.Err.Error(), e.URL)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a single record.
type Result struct {
	Row        int
	Identifier string
	URL        string
	State      State
	Text       string
	Err        error
}

// Value is what gets written into the derived column, failures are written
// as a readable note instead of text.
func (r Result) Value() string {
	switch r.State {
	case StateExtracted:
		return r.Text
	case StateFailed:
		return r.Err.Error()
	default:
		return ""
	}
}

type Summary struct {
	Results   []Result
	Extracted int
	Failed    int
	Pending   int
	Duration  time.Duration
}

func (s Summary) Total() int {
	return len(s.Results)
}

// Failures returns the failed results in record order.
func (s Summary) Failures() []Result {
	var out []Result
	for _, r := range s.Results {
		if r.State == StateFailed {
			out = append(out, r)
		}
	}
	return out
}

// Progress is reported once per processed record.
type Progress struct {
	Done   int
	Total  int
	Result Result
}

type Observer interface {
	Observe(p Progress)
}

type ObserverFunc func(p Progress)

func (f ObserverFunc) Observe(p Progress) {
	f(p)
}
