package domain

import "time"

type EventKind string

const (
	EventEnter EventKind = "enter" // accepted TryEnter
	EventExit  EventKind = "exit"  // accepted TryExit
)

// LogEntry records one accepted gate passage. Entries are never modified
// after they are appended.
type LogEntry struct {
	Event     EventKind   `json:"event"`
	Timestamp time.Time   `json:"timestamp"`
	Gate      int         `json:"gate"`
	Vehicle   VehicleInfo `json:"vehicle"`
}

type LogQueryDTO struct {
	From string `form:"from"` // RFC 3339, inclusive
	To   string `form:"to"`   // RFC 3339, inclusive
}
