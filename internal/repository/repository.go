package repository

import (
	"context"
	"errors"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
)

var ErrNotFound = errors.New("record not found")
var ErrDuplicateEntry = errors.New("record already exists")
var ErrNoActiveSession = errors.New("no active parking session for the given ticket")

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id int) (*domain.User, error)
}

// EventLogRepository archives accepted gate passages. The in-memory log stays
// authoritative; this copy survives restarts.
type EventLogRepository interface {
	Append(ctx context.Context, facilityID string, entry domain.LogEntry) error
	FindRange(ctx context.Context, facilityID string, from, to time.Time) ([]domain.LogEntry, error)
}

type TariffRepository interface {
	// Save stores tariff as the facility's next version and returns that version.
	Save(ctx context.Context, facilityID string, tariff domain.Tariff) (int, error)
	// Latest returns ErrNotFound when no tariff was ever stored.
	Latest(ctx context.Context, facilityID string) (domain.Tariff, int, error)
}

type ParkingSessionRepository interface {
	Open(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error)
	Close(ctx context.Context, ticketID string, exitGate int, exitTime time.Time) (*domain.ParkingSession, error)
	MarkPaid(ctx context.Context, ticketID string, amount domain.Price, paidAt time.Time) error
	FindByTicketID(ctx context.Context, ticketID string) (*domain.ParkingSession, error)
	FindActive(ctx context.Context) ([]domain.ParkingSession, error)
}

type GateMessageLogRepository interface {
	Create(ctx context.Context, msg *domain.GateMessageLog) error
}

// GateControllerRepository tracks which gate controllers are talking to the
// queue and when each was last heard from.
type GateControllerRepository interface {
	Touch(ctx context.Context, s domain.GateControllerSighting) error
	FindAll(ctx context.Context) ([]domain.GateController, error)
	FindByThingName(ctx context.Context, thingName string) (*domain.GateController, error)
}
