package event

// Sequence hands out monotonic event IDs.
//
// The pipeline assigns input events IDs 1..n by array position and then
// continues the sequence for synthetic events, so identical input always
// yields identical IDs. Never derived from wall-clock time.
//
// Not safe for concurrent use; normalization is single-threaded.
type Sequence struct {
	next ID
}

// NewSequenceAt creates a sequence whose first Next() returns start+1.
func NewSequenceAt(start ID) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next ID.
func (s *Sequence) Next() ID {
	s.next++
	return s.next
}
