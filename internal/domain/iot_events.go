package domain

import (
	"encoding/json"
	"time"
)

// Message types published by gate controllers and forwarded to SQS by an IoT rule.
const (
	MessageGateEntry = "gate_entry"
	MessageGateExit  = "gate_exit"
	MessagePayment   = "payment"
)

// GenericGateMessage is parsed first to find message_type and the common fields.
type GenericGateMessage struct {
	DeviceID          string          `json:"device_id"` // thing name of the gate controller
	MessageType       string          `json:"message_type"`
	Timestamp         string          `json:"timestamp"`                     // RFC 3339 from the controller
	ReceivedMqttTopic string          `json:"received_mqtt_topic,omitempty"` // added by the IoT rule
	RawPayload        json.RawMessage `json:"-"`
}

// ParsedTimestamp falls back to now when the controller clock string is unusable.
func (m GenericGateMessage) ParsedTimestamp() time.Time {
	if m.Timestamp != "" {
		if t, err := time.Parse(time.RFC3339Nano, m.Timestamp); err == nil {
			return t
		}
	}
	return time.Now()
}

type GateEntryEvent struct {
	GenericGateMessage
	Gate    int         `json:"gate"`
	Vehicle VehicleInfo `json:"vehicle"`
}

type GateExitEvent struct {
	GenericGateMessage
	Gate     int         `json:"gate"`
	Vehicle  VehicleInfo `json:"vehicle"`
	TicketID string      `json:"ticket_id"`
}

// PaymentTerminalEvent comes from a pay station next to the exit lanes.
type PaymentTerminalEvent struct {
	GenericGateMessage
	TicketID string `json:"ticket_id"`
	Amount   Price  `json:"amount"`
}

// BarrierControlCommandPayload is published to the gate controller over MQTT.
type BarrierControlCommandPayload struct {
	Command   string        `json:"command"` // "open" or "close"
	Direction GateDirection `json:"direction"`
	Gate      int           `json:"gate"`
	RequestID string        `json:"request_id,omitempty"`
	VehicleID string        `json:"vehicle_id,omitempty"`
}

// GateMessageLog archives one raw queue message and what became of it.
type GateMessageLog struct {
	ID              int64           `json:"id"`
	ReceivedAt      time.Time       `json:"received_at"`
	DeviceID        string          `json:"device_id"`
	MqttTopic       string          `json:"mqtt_topic"`
	MessageType     string          `json:"message_type"`
	Payload         json.RawMessage `json:"payload"`
	ProcessedStatus string          `json:"processed_status"` // "processed", "rejected", "error"
	ProcessingNotes string          `json:"processing_notes,omitempty"`
}
