package domain

import (
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// TicketHandle is what a gate needs to see of a ticket at exit time.
type TicketHandle interface {
	VehicleID() string
}

// Ticket is issued once per accepted entry and handed over to the caller.
// The facility only remembers the vehicle identifier, never the ticket.
type Ticket struct {
	id         uuid.UUID
	facilityID uuid.UUID
	vehicleID  string
	entryTime  TimeOfDay
	issuedAt   time.Time
	paid       atomic.Bool
}

func NewTicket(facilityID uuid.UUID, vehicleID string, entryTime TimeOfDay, issuedAt time.Time) *Ticket {
	return &Ticket{
		id:         uuid.New(),
		facilityID: facilityID,
		vehicleID:  vehicleID,
		entryTime:  entryTime,
		issuedAt:   issuedAt,
	}
}

func (t *Ticket) ID() uuid.UUID         { return t.id }
func (t *Ticket) FacilityID() uuid.UUID { return t.facilityID }
func (t *Ticket) EntryTime() TimeOfDay  { return t.entryTime }
func (t *Ticket) IssuedAt() time.Time   { return t.issuedAt }
func (t *Ticket) Paid() bool            { return t.paid.Load() }

// VehicleID is nil-safe so a missing ticket can still be compared at a gate.
func (t *Ticket) VehicleID() string {
	if t == nil {
		return ""
	}
	return t.vehicleID
}

// MarkPaid reports whether this call flipped the ticket to paid.
func (t *Ticket) MarkPaid() bool {
	return t.paid.CompareAndSwap(false, true)
}

type TicketDTO struct {
	ID         string    `json:"ticket_id"`
	FacilityID string    `json:"facility_id"`
	VehicleID  string    `json:"vehicle_id"`
	EntryTime  TimeOfDay `json:"entry_time"`
	IssuedAt   time.Time `json:"issued_at"`
	Paid       bool      `json:"paid"`
}

func (t *Ticket) DTO() TicketDTO {
	return TicketDTO{
		ID:         t.id.String(),
		FacilityID: t.facilityID.String(),
		VehicleID:  t.vehicleID,
		EntryTime:  t.entryTime,
		IssuedAt:   t.issuedAt,
		Paid:       t.Paid(),
	}
}

func (t *Ticket) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.DTO())
}
