package ledger

import (
	"sync"
	"time"
)

// Sequencer hands out per-stream stamps in process. Seq increases by one
// per call and At is the clock reading, held back to the previous At
// whenever the clock steps backwards.
type Sequencer struct {
	mu      sync.Mutex
	now     func() time.Time
	streams map[string]Stamp
}

func NewSequencer(now func() time.Time) *Sequencer {
	if now == nil {
		now = time.Now
	}
	return &Sequencer{
		now:     now,
		streams: make(map[string]Stamp),
	}
}

func (s *Sequencer) Next(stream string) Stamp {
	s.mu.Lock()
	defer s.mu.Unlock()

	last := s.streams[stream]
	next := Stamp{Seq: last.Seq + 1, At: s.now().UTC()}
	if next.At.Before(last.At) {
		next.At = last.At
	}
	s.streams[stream] = next
	return next
}

func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.streams = make(map[string]Stamp)
}
