// Package batch accumulates per-item outcomes of sequential pipeline stages.
package batch

import "fmt"

// Failure records why one item of a batch failed.
type Failure struct {
	Key    string
	Reason string
}

func (f Failure) String() string {
	return fmt.Sprintf("%s: %s", f.Key, f.Reason)
}

// Summary counts item outcomes. A failed item never aborts the batch; it is
// recorded here and the loop moves on.
type Summary struct {
	Total     int
	Succeeded int
	Skipped   int
	Failures  []Failure
}

// Failed returns the number of failed items.
func (s Summary) Failed() int {
	return len(s.Failures)
}

// Succeed counts a successful item.
func (s *Summary) Succeed() {
	s.Total++
	s.Succeeded++
}

// Skip counts an item that needed no work.
func (s *Summary) Skip() {
	s.Total++
	s.Skipped++
}

// Fail records a failed item.
func (s *Summary) Fail(key string, err error) {
	s.Total++
	reason := "unknown error"
	if err != nil {
		reason = err.Error()
	}
	s.Failures = append(s.Failures, Failure{Key: key, Reason: reason})
}

// String renders a one line summary.
func (s Summary) String() string {
	return fmt.Sprintf("total=%d succeeded=%d skipped=%d failed=%d", s.Total, s.Succeeded, s.Skipped, s.Failed())
}
