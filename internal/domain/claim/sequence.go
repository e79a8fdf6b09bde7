package claim

import "fmt"

const idPrefix = "REQ-"

// Sequence issues monotonically increasing report identifiers of the
// form REQ-NNNN, zero-padded to four digits (larger counters simply
// widen the number). The counter is explicit state the caller persists
// across allocations; it is never reconstructed by scanning existing
// reports, so ids are not reused after external pruning.
type Sequence struct {
	counter int64
}

// NewSequence restores a sequence from a persisted counter value.
// Counters below 1 are normalized to 1.
func NewSequence(counter int64) Sequence {
	if counter < 1 {
		counter = 1
	}
	return Sequence{counter: counter}
}

// Counter returns the value the next allocation will use, for persistence
func (s Sequence) Counter() int64 {
	if s.counter < 1 {
		return 1
	}
	return s.counter
}

// Next allocates the next identifier and returns the advanced sequence
func (s Sequence) Next() (string, Sequence) {
	n := s.Counter()
	return fmt.Sprintf("%s%04d", idPrefix, n), Sequence{counter: n + 1}
}
