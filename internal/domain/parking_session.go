package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

type ParkingSessionStatus string

const (
	SessionActive    ParkingSessionStatus = "active"
	SessionCompleted ParkingSessionStatus = "completed"
)

// ParkingSession is the persisted history of one ticket, from accepted entry
// to accepted exit. It is written best-effort next to the in-memory facility
// and is never consulted to decide whether a gate opens.
type ParkingSession struct {
	ID              int                  `json:"id"`
	TicketID        string               `json:"ticket_id"`
	VehicleID       string               `json:"vehicle_id"`
	VehicleClass    VehicleClass         `json:"vehicle_class"`
	OwnerID         null.String          `json:"owner_id"`
	EntryGate       int                  `json:"entry_gate"`
	ExitGate        null.Int             `json:"exit_gate"`
	EntryTime       time.Time            `json:"entry_time"`
	ExitTime        null.Time            `json:"exit_time"`
	DurationMinutes null.Int             `json:"duration_minutes"`
	AmountPaid      null.Float           `json:"amount_paid"`
	PaidAt          null.Time            `json:"paid_at"`
	Status          ParkingSessionStatus `json:"status"`
	CreatedAt       time.Time            `json:"created_at"`
	UpdatedAt       time.Time            `json:"updated_at"`
}

// EnterRequestDTO is the body of POST /gates/entry/:gate.
type EnterRequestDTO struct {
	Vehicle   VehicleInfo `json:"vehicle" binding:"required"`
	Timestamp string      `json:"timestamp,omitempty"` // RFC 3339; server time when empty
}

// ExitRequestDTO is the body of POST /gates/exit/:gate.
type ExitRequestDTO struct {
	Vehicle   VehicleInfo `json:"vehicle" binding:"required"`
	TicketID  string      `json:"ticket_id" binding:"required"`
	Timestamp string      `json:"timestamp,omitempty"`
}

type PaymentRequestDTO struct {
	Amount Price `json:"amount" binding:"gte=0"`
}

type PaymentQuoteDTO struct {
	TicketID string `json:"ticket_id"`
	Amount   Price  `json:"amount"`
	Paid     bool   `json:"paid"`
}

type PaymentResultDTO struct {
	TicketID string `json:"ticket_id"`
	Accepted bool   `json:"accepted"`
	Due      Price  `json:"due"`
}

type AvailabilityDTO struct {
	Capacity  int `json:"capacity"`
	Available int `json:"available"`
	Occupied  int `json:"occupied"`
}
