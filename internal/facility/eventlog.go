package facility

import (
	"sync"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
)

// EventLog is an append-only record of accepted gate passages, oldest first.
type EventLog struct {
	mu      sync.RWMutex
	entries []domain.LogEntry
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Append(entry domain.LogEntry) {
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
}

// Range returns every entry with from <= Timestamp <= to in recorded order.
// The whole log is scanned: entries are appended in acceptance order, and
// caller supplied timestamps from different gates need not be sorted.
func (l *EventLog) Range(from, to time.Time) []domain.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.LogEntry, 0)
	if to.Before(from) {
		return out
	}
	for _, e := range l.entries {
		if e.Timestamp.Before(from) || e.Timestamp.After(to) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (l *EventLog) All() []domain.LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.LogEntry(nil), l.entries...)
}

func (l *EventLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
