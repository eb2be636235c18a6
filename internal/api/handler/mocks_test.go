package handler

import (
	"context"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
)

type MockParkingService struct {
	EnterFunc          func(ctx context.Context, gate int, vehicle domain.VehicleInfo, ts time.Time) (*domain.Ticket, error)
	ExitFunc           func(ctx context.Context, gate int, vehicle domain.VehicleInfo, ticketID string, ts time.Time) error
	AvailabilityFunc   func() domain.AvailabilityDTO
	ActiveFunc         func() []string
	TariffFunc         func() (domain.Tariff, bool)
	SetTariffFunc      func(ctx context.Context, t domain.Tariff) (int, error)
	QuoteFunc          func(ticketID string) (domain.PaymentQuoteDTO, error)
	PayFunc            func(ctx context.Context, ticketID string, amount domain.Price) (domain.PaymentResultDTO, error)
	LogsFunc           func(from, to time.Time) []domain.LogEntry
	ArchivedLogsFunc   func(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error)
	SessionFunc        func(ctx context.Context, ticketID string) (*domain.ParkingSession, error)
	ActiveSessionsFunc func(ctx context.Context) ([]domain.ParkingSession, error)
}

func (m *MockParkingService) Enter(ctx context.Context, gate int, vehicle domain.VehicleInfo, ts time.Time) (*domain.Ticket, error) {
	return m.EnterFunc(ctx, gate, vehicle, ts)
}

func (m *MockParkingService) Exit(ctx context.Context, gate int, vehicle domain.VehicleInfo, ticketID string, ts time.Time) error {
	return m.ExitFunc(ctx, gate, vehicle, ticketID, ts)
}

func (m *MockParkingService) Availability() domain.AvailabilityDTO {
	if m.AvailabilityFunc != nil {
		return m.AvailabilityFunc()
	}
	return domain.AvailabilityDTO{}
}

func (m *MockParkingService) ActiveVehicles() []string {
	if m.ActiveFunc != nil {
		return m.ActiveFunc()
	}
	return []string{}
}

func (m *MockParkingService) Tariff() (domain.Tariff, bool) {
	if m.TariffFunc != nil {
		return m.TariffFunc()
	}
	return domain.Tariff{}, false
}

func (m *MockParkingService) SetTariff(ctx context.Context, t domain.Tariff) (int, error) {
	return m.SetTariffFunc(ctx, t)
}

func (m *MockParkingService) Quote(ticketID string) (domain.PaymentQuoteDTO, error) {
	return m.QuoteFunc(ticketID)
}

func (m *MockParkingService) Pay(ctx context.Context, ticketID string, amount domain.Price) (domain.PaymentResultDTO, error) {
	return m.PayFunc(ctx, ticketID, amount)
}

func (m *MockParkingService) Logs(from, to time.Time) []domain.LogEntry {
	if m.LogsFunc != nil {
		return m.LogsFunc(from, to)
	}
	return []domain.LogEntry{}
}

func (m *MockParkingService) ArchivedLogs(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error) {
	return m.ArchivedLogsFunc(ctx, from, to)
}

func (m *MockParkingService) Session(ctx context.Context, ticketID string) (*domain.ParkingSession, error) {
	return m.SessionFunc(ctx, ticketID)
}

func (m *MockParkingService) ActiveSessions(ctx context.Context) ([]domain.ParkingSession, error) {
	return m.ActiveSessionsFunc(ctx)
}

type MockAuthService struct {
	RegisterFunc func(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, error)
	LoginFunc    func(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error)
}

func (m *MockAuthService) Register(ctx context.Context, dto domain.RegisterUserDTO) (*domain.User, error) {
	return m.RegisterFunc(ctx, dto)
}

func (m *MockAuthService) Login(ctx context.Context, dto domain.LoginUserDTO) (*domain.AuthResponseDTO, error) {
	return m.LoginFunc(ctx, dto)
}

type MockLPRService struct {
	ProcessFunc func(ctx context.Context, image []byte) (string, float32, error)
}

func (m *MockLPRService) ProcessImageForLPR(ctx context.Context, image []byte) (string, float32, error) {
	return m.ProcessFunc(ctx, image)
}

type MockBarrierCommander struct {
	SendFunc func(ctx context.Context, cmd domain.BarrierControlCommandPayload) error
}

func (m *MockBarrierCommander) SendBarrierCommand(ctx context.Context, cmd domain.BarrierControlCommandPayload) error {
	return m.SendFunc(ctx, cmd)
}
