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

type pgGateControllerRepository struct {
	db *sql.DB
}

func NewPgGateControllerRepository(db *sql.DB) repository.GateControllerRepository {
	return &pgGateControllerRepository{db: db}
}

// Touch creates the controller on first sight, otherwise updates it. A
// sighting older than the stored one only bumps the counter.
func (r *pgGateControllerRepository) Touch(ctx context.Context, s domain.GateControllerSighting) error {
	query := `INSERT INTO gate_controllers
                (thing_name, last_topic, last_message_type, last_status, last_seen_at, message_count, created_at, updated_at)
               VALUES ($1, $2, $3, $4, $5, 1, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)
               ON CONFLICT (thing_name) DO UPDATE SET
                last_topic        = CASE WHEN EXCLUDED.last_seen_at >= gate_controllers.last_seen_at THEN EXCLUDED.last_topic ELSE gate_controllers.last_topic END,
                last_message_type = CASE WHEN EXCLUDED.last_seen_at >= gate_controllers.last_seen_at THEN EXCLUDED.last_message_type ELSE gate_controllers.last_message_type END,
                last_status       = CASE WHEN EXCLUDED.last_seen_at >= gate_controllers.last_seen_at THEN EXCLUDED.last_status ELSE gate_controllers.last_status END,
                last_seen_at      = GREATEST(EXCLUDED.last_seen_at, gate_controllers.last_seen_at),
                message_count     = gate_controllers.message_count + 1,
                updated_at        = CURRENT_TIMESTAMP`

	_, err := r.db.ExecContext(ctx, query,
		s.ThingName, nullString(s.Topic), nullString(s.MessageType), nullString(s.Status), s.SeenAt)
	if err != nil {
		return fmt.Errorf("GateControllerRepository.Touch: %w", err)
	}
	return nil
}

const gateControllerColumns = `thing_name, last_topic, last_message_type, last_status, last_seen_at, message_count, created_at`

func (r *pgGateControllerRepository) FindByThingName(ctx context.Context, thingName string) (*domain.GateController, error) {
	query := `SELECT ` + gateControllerColumns + ` FROM gate_controllers WHERE thing_name = $1`
	gc, err := scanGateController(r.db.QueryRowContext(ctx, query, thingName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("GateControllerRepository.FindByThingName: %w", err)
	}
	return gc, nil
}

func (r *pgGateControllerRepository) FindAll(ctx context.Context) ([]domain.GateController, error) {
	query := `SELECT ` + gateControllerColumns + ` FROM gate_controllers ORDER BY thing_name`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("GateControllerRepository.FindAll: %w", err)
	}
	defer rows.Close()

	controllers := []domain.GateController{}
	for rows.Next() {
		gc, err := scanGateController(rows)
		if err != nil {
			return nil, fmt.Errorf("GateControllerRepository.FindAll (scanning row): %w", err)
		}
		controllers = append(controllers, *gc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("GateControllerRepository.FindAll (rows error): %w", err)
	}
	return controllers, nil
}

func scanGateController(row rowScanner) (*domain.GateController, error) {
	var (
		gc                     domain.GateController
		topic, msgType, status sql.NullString
		lastSeenAt, createdAt  time.Time
	)
	if err := row.Scan(&gc.ThingName, &topic, &msgType, &status, &lastSeenAt, &gc.MessageCount, &createdAt); err != nil {
		return nil, err
	}
	gc.LastTopic = topic.String
	gc.LastMessageType = msgType.String
	gc.LastStatus = status.String
	gc.LastSeenAt = lastSeenAt.In(time.UTC)
	gc.CreatedAt = createdAt.In(time.UTC)
	return &gc, nil
}
