package domain

import "time"

// GateController is a device that publishes gate messages, keyed by its IoT
// thing name. Rows are created on the first message seen from the device.
type GateController struct {
	ThingName       string    `json:"thing_name"`
	LastTopic       string    `json:"last_topic,omitempty"`
	LastMessageType string    `json:"last_message_type"`
	LastStatus      string    `json:"last_status"`
	LastSeenAt      time.Time `json:"last_seen_at"`
	MessageCount    int64     `json:"message_count"`
	CreatedAt       time.Time `json:"created_at"`
}

// GateControllerSighting is what one queue message tells about its sender.
type GateControllerSighting struct {
	ThingName   string
	Topic       string
	MessageType string
	Status      string
	SeenAt      time.Time
}
