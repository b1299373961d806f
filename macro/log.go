package macro

import "sync"

// DefaultMaxEvents bounds memory under pathological high-frequency input.
const DefaultMaxEvents = 10_000

// Log is the ordered sequence of recorded events. It is appended to by the
// recorder's sampling goroutine while the owner may concurrently read
// counts, so access is guarded. On overflow the oldest event is dropped
// first; a too-long recording degrades instead of exhausting memory.
type Log struct {
	mu     sync.Mutex
	events []Event
	max    int
}

// NewLog creates an empty log capped at max events. A non-positive max
// falls back to DefaultMaxEvents.
func NewLog(max int) *Log {
	if max <= 0 {
		max = DefaultMaxEvents
	}
	return &Log{max: max}
}

func (l *Log) Append(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.events) == l.max {
		copy(l.events, l.events[1:])
		l.events = l.events[:len(l.events)-1]
	}
	l.events = append(l.events, e)
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

// LastTimestamp returns the timestamp of the most recent event, or 0 for an
// empty log.
func (l *Log) LastTimestamp() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.events) == 0 {
		return 0
	}
	return l.events[len(l.events)-1].Timestamp
}

// Snapshot returns a frozen copy of the log contents in recorded order. The
// copy never aliases the live backing slice, so a player replaying the
// snapshot and a recorder still appending cannot observe each other.
func (l *Log) Snapshot() []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Event, len(l.events))
	copy(out, l.events)
	return out
}

// Duration returns the highest timestamp in the sequence, in seconds.
func Duration(events []Event) float64 {
	var max float64
	for _, e := range events {
		if e.Timestamp > max {
			max = e.Timestamp
		}
	}
	return max
}
