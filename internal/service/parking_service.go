package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"gopkg.in/guregu/null.v4"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/facility"
	"github.com/greenvvay/Parking/internal/metrics"
	"github.com/greenvvay/Parking/internal/repository"
	"github.com/greenvvay/Parking/internal/telemetry"
)

// ParkingService is the transport-facing wrapper around one facility. The
// facility decides every gate outcome; repositories only record history and
// their failures are logged, never returned to the gate.
type ParkingService struct {
	facility *facility.Facility
	tickets  *TicketStore
	log      *zap.Logger
	metrics  *metrics.Metrics

	sessionRepo repository.ParkingSessionRepository
	eventRepo   repository.EventLogRepository
	tariffRepo  repository.TariffRepository

	retention time.Duration
	timeout   time.Duration
}

type ParkingServiceOption func(*ParkingService)

func WithSessionRepository(r repository.ParkingSessionRepository) ParkingServiceOption {
	return func(s *ParkingService) { s.sessionRepo = r }
}

func WithEventLogRepository(r repository.EventLogRepository) ParkingServiceOption {
	return func(s *ParkingService) { s.eventRepo = r }
}

func WithTariffRepository(r repository.TariffRepository) ParkingServiceOption {
	return func(s *ParkingService) { s.tariffRepo = r }
}

func WithMetrics(m *metrics.Metrics) ParkingServiceOption {
	return func(s *ParkingService) { s.metrics = m }
}

func WithLogger(l *zap.Logger) ParkingServiceOption {
	return func(s *ParkingService) {
		if l != nil {
			s.log = l
		}
	}
}

// WithTicketRetention sets how long tickets of exited vehicles stay resolvable.
func WithTicketRetention(d time.Duration) ParkingServiceOption {
	return func(s *ParkingService) {
		if d > 0 {
			s.retention = d
		}
	}
}

func NewParkingService(f *facility.Facility, opts ...ParkingServiceOption) *ParkingService {
	s := &ParkingService{
		facility:  f,
		tickets:   NewTicketStore(),
		log:       zap.NewNop(),
		retention: 24 * time.Hour,
		timeout:   3 * time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.metrics.SetOccupancy(f.AvailableSpaces(), f.Capacity())
	return s
}

func (s *ParkingService) Facility() *facility.Facility { return s.facility }

// Enter admits a vehicle at entry gate and returns its ticket.
func (s *ParkingService) Enter(ctx context.Context, gate int, vehicle domain.VehicleInfo, ts time.Time) (*domain.Ticket, error) {
	ctx, span := telemetry.StartSpan(ctx, "ParkingService.Enter",
		attribute.Int("gate", gate), attribute.String("vehicle.id", vehicle.ID))

	ticket, err := s.facility.TryEnter(vehicle, gate, ts)
	if err != nil {
		s.metrics.Rejection(domain.EventEnter, err)
		s.log.Info("entry refused",
			zap.Int("gate", gate), zap.String("vehicle_id", vehicle.ID), zap.Error(err))
		telemetry.End(span, err)
		return nil, err
	}
	telemetry.End(span, nil)

	s.tickets.Put(ticket)
	s.log.Info("vehicle entered",
		zap.Int("gate", gate),
		zap.String("vehicle_id", vehicle.ID),
		zap.String("ticket_id", ticket.ID().String()),
		zap.Stringer("entry_time", ticket.EntryTime()))

	s.recordEntry(ctx, gate, vehicle, ticket)
	return ticket, nil
}

// Exit lets the vehicle out at exit gate, given the id of its ticket.
func (s *ParkingService) Exit(ctx context.Context, gate int, vehicle domain.VehicleInfo, ticketID string, ts time.Time) error {
	ctx, span := telemetry.StartSpan(ctx, "ParkingService.Exit",
		attribute.Int("gate", gate), attribute.String("vehicle.id", vehicle.ID))

	ticket, err := s.Ticket(ticketID)
	if err == nil {
		err = s.facility.TryExit(vehicle, gate, ts, ticket)
	}
	if err != nil {
		s.metrics.Rejection(domain.EventExit, err)
		s.log.Info("exit refused",
			zap.Int("gate", gate), zap.String("vehicle_id", vehicle.ID),
			zap.String("ticket_id", ticketID), zap.Error(err))
		telemetry.End(span, err)
		return err
	}
	telemetry.End(span, nil)

	exitAt := ts
	if exitAt.IsZero() {
		exitAt = s.facility.Clock().Now()
	}
	s.tickets.MarkExited(ticket.ID(), exitAt)
	s.log.Info("vehicle exited",
		zap.Int("gate", gate), zap.String("vehicle_id", vehicle.ID), zap.String("ticket_id", ticketID))

	s.recordExit(ctx, gate, vehicle, ticket, exitAt)
	return nil
}

// Ticket resolves a ticket id. Malformed and unknown ids are both ErrTicketNotFound.
func (s *ParkingService) Ticket(ticketID string) (*domain.Ticket, error) {
	id, err := uuid.Parse(ticketID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", domain.ErrTicketNotFound, ticketID)
	}
	return s.tickets.Get(id)
}

func (s *ParkingService) Availability() domain.AvailabilityDTO {
	occ := s.facility.Occupancy()
	return domain.AvailabilityDTO{
		Capacity:  occ.Capacity,
		Available: occ.Available,
		Occupied:  len(occ.Parked),
	}
}

func (s *ParkingService) ActiveVehicles() []string {
	return s.facility.Occupancy().Parked
}

// SetTariff installs t and stores it as a new version. With a tariff
// repository the returned version is the stored one, so numbering continues
// across restarts; otherwise it counts installs in this process.
func (s *ParkingService) SetTariff(ctx context.Context, t domain.Tariff) (int, error) {
	if err := s.facility.SetupTariff(t); err != nil {
		return 0, err
	}
	version := s.facility.TariffVersion()

	if s.tariffRepo != nil {
		ctx, cancel := s.persistCtx(ctx)
		defer cancel()
		stored, err := s.tariffRepo.Save(ctx, s.facility.ID().String(), t)
		if err != nil {
			s.log.Error("failed to store tariff", zap.Error(err))
		} else {
			version = stored
		}
	}
	s.metrics.TariffInstalled(version)
	s.log.Info("tariff installed", zap.Int("version", version))
	return version, nil
}

// RestoreTariff installs the newest stored tariff. It reports false when the
// store has none.
func (s *ParkingService) RestoreTariff(ctx context.Context) (bool, error) {
	if s.tariffRepo == nil {
		return false, nil
	}
	t, version, err := s.tariffRepo.Latest(ctx, s.facility.ID().String())
	if errors.Is(err, repository.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.facility.SetupTariff(t); err != nil {
		return false, fmt.Errorf("stored tariff version %d: %w", version, err)
	}
	s.metrics.TariffInstalled(version)
	s.log.Info("tariff restored", zap.Int("stored_version", version))
	return true, nil
}

func (s *ParkingService) Tariff() (domain.Tariff, bool) {
	return s.facility.Tariff()
}

func (s *ParkingService) Quote(ticketID string) (domain.PaymentQuoteDTO, error) {
	ticket, err := s.Ticket(ticketID)
	if err != nil {
		return domain.PaymentQuoteDTO{}, err
	}
	return domain.PaymentQuoteDTO{
		TicketID: ticketID,
		Amount:   s.facility.Payment(ticket),
		Paid:     ticket.Paid(),
	}, nil
}

// Pay settles the ticket when amount covers the fee due now.
func (s *ParkingService) Pay(ctx context.Context, ticketID string, amount domain.Price) (domain.PaymentResultDTO, error) {
	ticket, err := s.Ticket(ticketID)
	if err != nil {
		return domain.PaymentResultDTO{}, err
	}
	due := s.facility.Payment(ticket)
	wasPaid := ticket.Paid()
	accepted := s.facility.ProcessPayment(ticket, amount)

	res := domain.PaymentResultDTO{TicketID: ticketID, Accepted: accepted, Due: due}
	if wasPaid {
		return res, nil
	}
	s.metrics.Payment(accepted, amount)
	if !accepted {
		s.log.Info("payment declined",
			zap.String("ticket_id", ticketID), zap.Float64("amount", float64(amount)), zap.Float64("due", float64(due)))
		return res, nil
	}
	s.log.Info("payment accepted", zap.String("ticket_id", ticketID), zap.Float64("amount", float64(amount)))

	if s.sessionRepo != nil {
		ctx, cancel := s.persistCtx(ctx)
		defer cancel()
		if err := s.sessionRepo.MarkPaid(ctx, ticketID, amount, s.facility.Clock().Now()); err != nil {
			s.log.Error("failed to store payment", zap.String("ticket_id", ticketID), zap.Error(err))
		}
	}
	return res, nil
}

// Logs returns the in-memory passages with from <= timestamp <= to.
func (s *ParkingService) Logs(from, to time.Time) []domain.LogEntry {
	return s.facility.Logs(from, to)
}

// ArchivedLogs reads the persisted passages, including those of earlier runs.
func (s *ParkingService) ArchivedLogs(ctx context.Context, from, to time.Time) ([]domain.LogEntry, error) {
	if s.eventRepo == nil {
		return s.facility.Logs(from, to), nil
	}
	return s.eventRepo.FindRange(ctx, s.facility.ID().String(), from, to)
}

// Session returns the stored history row of ticketID.
func (s *ParkingService) Session(ctx context.Context, ticketID string) (*domain.ParkingSession, error) {
	if s.sessionRepo == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	session, err := s.sessionRepo.FindByTicketID(ctx, ticketID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrTicketNotFound, ticketID)
	}
	return session, err
}

// ActiveSessions lists stored sessions without an exit, across restarts.
func (s *ParkingService) ActiveSessions(ctx context.Context) ([]domain.ParkingSession, error) {
	if s.sessionRepo == nil {
		return nil, domain.ErrHistoryUnavailable
	}
	return s.sessionRepo.FindActive(ctx)
}

// CleanupTickets forgets tickets of vehicles that left more than the
// retention period ago.
func (s *ParkingService) CleanupTickets(now time.Time) int {
	return s.tickets.Cleanup(now.Add(-s.retention))
}

// StartCleanupJob runs CleanupTickets every interval until ctx is done.
func (s *ParkingService) StartCleanupJob(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.CleanupTickets(s.facility.Clock().Now()); n > 0 {
				s.log.Info("expired tickets removed", zap.Int("count", n), zap.Int("remaining", s.tickets.Len()))
			}
		}
	}
}

func (s *ParkingService) recordEntry(ctx context.Context, gate int, vehicle domain.VehicleInfo, ticket *domain.Ticket) {
	if s.sessionRepo == nil && s.eventRepo == nil {
		return
	}
	ctx, cancel := s.persistCtx(ctx)
	defer cancel()

	if s.sessionRepo != nil {
		_, err := s.sessionRepo.Open(ctx, &domain.ParkingSession{
			TicketID:     ticket.ID().String(),
			VehicleID:    vehicle.ID,
			VehicleClass: vehicle.Class,
			OwnerID:      null.NewString(vehicle.OwnerID, vehicle.OwnerID != ""),
			EntryGate:    gate,
			EntryTime:    ticket.IssuedAt(),
			Status:       domain.SessionActive,
		})
		if err != nil {
			s.log.Error("failed to open session", zap.String("ticket_id", ticket.ID().String()), zap.Error(err))
		}
	}
	s.archive(ctx, domain.LogEntry{Event: domain.EventEnter, Timestamp: ticket.IssuedAt(), Gate: gate, Vehicle: vehicle})
}

func (s *ParkingService) recordExit(ctx context.Context, gate int, vehicle domain.VehicleInfo, ticket *domain.Ticket, at time.Time) {
	if s.sessionRepo == nil && s.eventRepo == nil {
		return
	}
	ctx, cancel := s.persistCtx(ctx)
	defer cancel()

	if s.sessionRepo != nil {
		if _, err := s.sessionRepo.Close(ctx, ticket.ID().String(), gate, at); err != nil {
			s.log.Error("failed to close session", zap.String("ticket_id", ticket.ID().String()), zap.Error(err))
		}
	}
	s.archive(ctx, domain.LogEntry{Event: domain.EventExit, Timestamp: at, Gate: gate, Vehicle: vehicle})
}

func (s *ParkingService) archive(ctx context.Context, entry domain.LogEntry) {
	if s.eventRepo == nil {
		return
	}
	if err := s.eventRepo.Append(ctx, s.facility.ID().String(), entry); err != nil {
		s.log.Error("failed to archive log entry",
			zap.String("event", string(entry.Event)), zap.String("vehicle_id", entry.Vehicle.ID), zap.Error(err))
	}
}

// persistCtx detaches history writes from request cancellation but bounds them.
func (s *ParkingService) persistCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
}
