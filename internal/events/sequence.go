package events

import "sync/atomic"

// Sequencer numbers events in the order they are accepted.
type Sequencer struct{ n atomic.Uint64 }

func (s *Sequencer) Next() uint64 { return s.n.Add(1) }
