package engine

import "sync/atomic"

// Sequencer issues monotonically increasing operation tokens and makes
// staleness observable: an in-flight cycle whose token is no longer
// current must discard its results without side effects.
//
// Each engine owns its own Sequencer so independent engines in the same
// process cannot cross-invalidate each other.
type Sequencer struct {
	counter atomic.Uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{}
}

// Begin allocates the next token, invalidating every earlier one.
func (s *Sequencer) Begin() uint64 {
	return s.counter.Add(1)
}

// IsCurrent reports whether the token is still the newest operation.
func (s *Sequencer) IsCurrent(token uint64) bool {
	return s.counter.Load() == token
}
