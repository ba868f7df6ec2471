package app

import "sync"

// sequence implements "last request wins": every fetch takes a ticket when
// it is issued, and its result is applied only if no newer ticket has been
// applied already. Late responses to superseded fetches are dropped.
type sequence struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func (s *sequence) next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// apply reports whether ticket may write view state, and records it if so.
func (s *sequence) apply(ticket uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ticket <= s.applied {
		return false
	}
	s.applied = ticket
	return true
}
