package postgresql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/repository"
)

const sessionColumns = `id, ticket_id, vehicle_id, vehicle_class, owner_id, entry_gate, exit_gate,
	                 entry_time, exit_time, duration_minutes, amount_paid, paid_at, status, created_at, updated_at`

type pgParkingSessionRepository struct {
	db *sql.DB
}

func NewPgParkingSessionRepository(db *sql.DB) repository.ParkingSessionRepository {
	return &pgParkingSessionRepository{db: db}
}

func (r *pgParkingSessionRepository) Open(ctx context.Context, session *domain.ParkingSession) (*domain.ParkingSession, error) {
	query := `INSERT INTO parking_sessions
	           (ticket_id, vehicle_id, vehicle_class, owner_id, entry_gate, entry_time, status, created_at, updated_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
	           RETURNING id, created_at, updated_at`

	if session.Status == "" {
		session.Status = domain.SessionActive
	}
	err := r.db.QueryRowContext(ctx, query,
		session.TicketID, session.VehicleID, nullString(string(session.VehicleClass)), session.OwnerID,
		session.EntryGate, session.EntryTime.UTC(), session.Status,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if _, ok := uniqueConstraint(err); ok {
			return nil, fmt.Errorf("%w: session for ticket %s", repository.ErrDuplicateEntry, session.TicketID)
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Open: %w", err)
	}
	session.CreatedAt = session.CreatedAt.In(time.UTC)
	session.UpdatedAt = session.UpdatedAt.In(time.UTC)
	return session, nil
}

// Close completes the active session of ticketID.
func (r *pgParkingSessionRepository) Close(ctx context.Context, ticketID string, exitGate int, exitTime time.Time) (*domain.ParkingSession, error) {
	query := `UPDATE parking_sessions
	           SET exit_gate = $2,
	               exit_time = GREATEST($3, entry_time),
	               duration_minutes = FLOOR(EXTRACT(EPOCH FROM (GREATEST($3, entry_time) - entry_time)) / 60),
	               status = $4,
	               updated_at = CURRENT_TIMESTAMP
	           WHERE ticket_id = $1 AND status = $5
	           RETURNING ` + sessionColumns

	session, err := scanSession(r.db.QueryRowContext(ctx, query,
		ticketID, exitGate, exitTime.UTC(), domain.SessionCompleted, domain.SessionActive))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNoActiveSession
		}
		return nil, fmt.Errorf("ParkingSessionRepository.Close: %w", err)
	}
	return session, nil
}

func (r *pgParkingSessionRepository) MarkPaid(ctx context.Context, ticketID string, amount domain.Price, paidAt time.Time) error {
	query := `UPDATE parking_sessions
	           SET amount_paid = $2, paid_at = $3, updated_at = CURRENT_TIMESTAMP
	           WHERE ticket_id = $1 AND paid_at IS NULL`
	res, err := r.db.ExecContext(ctx, query, ticketID, float64(amount), paidAt.UTC())
	if err != nil {
		return fmt.Errorf("ParkingSessionRepository.MarkPaid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ParkingSessionRepository.MarkPaid: %w", err)
	}
	if n == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *pgParkingSessionRepository) FindByTicketID(ctx context.Context, ticketID string) (*domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE ticket_id = $1`
	session, err := scanSession(r.db.QueryRowContext(ctx, query, ticketID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("ParkingSessionRepository.FindByTicketID: %w", err)
	}
	return session, nil
}

func (r *pgParkingSessionRepository) FindActive(ctx context.Context) ([]domain.ParkingSession, error) {
	query := `SELECT ` + sessionColumns + ` FROM parking_sessions WHERE status = $1 ORDER BY entry_time`
	rows, err := r.db.QueryContext(ctx, query, domain.SessionActive)
	if err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindActive: %w", err)
	}
	defer rows.Close()

	sessions := make([]domain.ParkingSession, 0)
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("ParkingSessionRepository.FindActive scan: %w", err)
		}
		sessions = append(sessions, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ParkingSessionRepository.FindActive rows: %w", err)
	}
	return sessions, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.ParkingSession, error) {
	s := &domain.ParkingSession{}
	var class sql.NullString
	err := row.Scan(
		&s.ID, &s.TicketID, &s.VehicleID, &class, &s.OwnerID, &s.EntryGate, &s.ExitGate,
		&s.EntryTime, &s.ExitTime, &s.DurationMinutes, &s.AmountPaid, &s.PaidAt, &s.Status,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.VehicleClass = domain.VehicleClass(class.String)
	s.EntryTime = s.EntryTime.In(time.UTC)
	if s.ExitTime.Valid {
		s.ExitTime.Time = s.ExitTime.Time.In(time.UTC)
	}
	if s.PaidAt.Valid {
		s.PaidAt.Time = s.PaidAt.Time.In(time.UTC)
	}
	s.CreatedAt = s.CreatedAt.In(time.UTC)
	s.UpdatedAt = s.UpdatedAt.In(time.UTC)
	return s, nil
}
