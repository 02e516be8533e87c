package game

// Sequence hands out increasing identifiers. Tables own their own
// sequences so that card and player ids never depend on process state.
type Sequence struct {
	next uint64
}

// NewSequence returns a sequence whose first value is start
func NewSequence(start uint64) *Sequence {
	return &Sequence{next: start}
}

// Next returns the next identifier
func (s *Sequence) Next() uint64 {
	id := s.next
	s.next++
	return id
}

// Peek returns the identifier Next would return without consuming it
func (s *Sequence) Peek() uint64 {
	return s.next
}

// Skip makes sure the sequence never returns a value below min again
func (s *Sequence) Skip(min uint64) {
	if s.next < min {
		s.next = min
	}
}
