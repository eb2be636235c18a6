package handler

import (
	"context"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
)

// ParkingService is implemented by service.ParkingService.
type ParkingService interface {
	Enter(ctx context.Context, gate int, vehicle domain.VehicleInfo, ts time.Time) (*domain.Ticket, error)
	Exit(ctx context.Context, gate int, vehicle domain.VehicleInfo, ticketID string, ts time.Time) error
	Availability() domain.AvailabilityDTO
	ActiveVehicles() []string
	Tariff() (domain.Tariff, bool)
	SetTariff(ctx context.Context, t domain.Tariff) (int, error)
	Quote(ticketID string) (domain.PaymentQuoteDTO, error)
	Pay(ctx context.Context, ticketID string, amount domain.Price) (domain.PaymentResultDTO, error)
	Logs(from, to time.Time) []domain.LogEntry
	ArchivedLogs(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error)
	Session(ctx context.Context, ticketID string) (*domain.ParkingSession, error)
	ActiveSessions(ctx context.Context) ([]domain.ParkingSession, error)
}

type AuthService interface {
	Register(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, error)
	Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error)
}

type LPRService interface {
	ProcessImageForLPR(ctx context.Context, imageBytes []byte) (string, float32, error)
}

// BarrierCommander is implemented by service.BarrierCommander.
type BarrierCommander interface {
	SendBarrierCommand(ctx context.Context, cmd domain.BarrierControlCommandPayload) error
}

// GateControllerStore is the read side of repository.GateControllerRepository.
type GateControllerStore interface {
	FindAll(ctx context.Context) ([]domain.GateController, error)
	FindByThingName(ctx context.Context, thingName string) (*domain.GateController, error)
}
