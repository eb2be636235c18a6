package postgresql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/repository"
)

type pgEventLogRepository struct {
	db *sql.DB
}

func NewPgEventLogRepository(db *sql.DB) repository.EventLogRepository {
	return &pgEventLogRepository{db: db}
}

func (r *pgEventLogRepository) Append(ctx context.Context, facilityID string, entry domain.LogEntry) error {
	query := `INSERT INTO facility_events
	            (facility_id, event, gate, vehicle_id, vehicle_class, owner_id, occurred_at)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, query,
		facilityID, string(entry.Event), entry.Gate, entry.Vehicle.ID,
		nullString(string(entry.Vehicle.Class)), nullString(entry.Vehicle.OwnerID),
		entry.Timestamp.UTC(),
	)
	if err != nil {
		return fmt.Errorf("EventLogRepository.Append: %w", err)
	}
	return nil
}

func (r *pgEventLogRepository) FindRange(ctx context.Context, facilityID string, from, to time.Time) ([]domain.LogEntry, error) {
	query := `SELECT event, gate, vehicle_id, vehicle_class, owner_id, occurred_at
	           FROM facility_events
	           WHERE facility_id = $1 AND occurred_at BETWEEN $2 AND $3
	           ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query, facilityID, from.UTC(), to.UTC())
	if err != nil {
		return nil, fmt.Errorf("EventLogRepository.FindRange: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.LogEntry, 0)
	for rows.Next() {
		var (
			e            domain.LogEntry
			event        string
			class, owner sql.NullString
		)
		if err := rows.Scan(&event, &e.Gate, &e.Vehicle.ID, &class, &owner, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("EventLogRepository.FindRange scan: %w", err)
		}
		e.Event = domain.EventKind(event)
		e.Vehicle.Class = domain.VehicleClass(class.String)
		e.Vehicle.OwnerID = owner.String
		e.Timestamp = e.Timestamp.In(time.UTC)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("EventLogRepository.FindRange rows: %w", err)
	}
	return entries, nil
}
