package postgresql

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/repository"
)

type pgGateMessageLogRepository struct {
	db *sql.DB
}

func NewPgGateMessageLogRepository(db *sql.DB) repository.GateMessageLogRepository {
	return &pgGateMessageLogRepository{db: db}
}

func (r *pgGateMessageLogRepository) Create(ctx context.Context, msg *domain.GateMessageLog) error {
	query := `INSERT INTO gate_messages_log
                (received_at, device_id, mqtt_topic, message_type, payload, processed_status, processing_notes)
               VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`

	var payload []byte
	if len(msg.Payload) > 0 {
		payload = msg.Payload
	}

	err := r.db.QueryRowContext(ctx, query,
		msg.ReceivedAt,
		nullString(msg.DeviceID),
		nullString(msg.MqttTopic),
		nullString(msg.MessageType),
		payload,
		nullString(msg.ProcessedStatus),
		nullString(msg.ProcessingNotes),
	).Scan(&msg.ID)
	if err != nil {
		return fmt.Errorf("GateMessageLogRepository.Create: %w", err)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
