package domain

import "time"

type GateDirection string

const (
	GateDirectionEntry GateDirection = "entry"
	GateDirectionExit  GateDirection = "exit"
)

func DirectionOf(kind EventKind) GateDirection {
	if kind == EventExit {
		return GateDirectionExit
	}
	return GateDirectionEntry
}

// FacilityEventNotification is pushed to dashboards (WebSocket), to the
// redis channel and to the barrier commander after every accepted passage.
type FacilityEventNotification struct {
	EventID       string        `json:"event_id"`
	FacilityID    string        `json:"facility_id"`
	EventType     EventKind     `json:"event_type"`
	GateDirection GateDirection `json:"gate_direction"`
	Gate          int           `json:"gate"`
	Vehicle       VehicleInfo   `json:"vehicle"`
	Timestamp     time.Time     `json:"timestamp"`
	Available     int           `json:"available"`
	Capacity      int           `json:"capacity"`

	Message string `json:"message,omitempty"`
}
