package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/greenvvay/Parking/internal/domain"
	"github.com/greenvvay/Parking/internal/repository"
)

type pgTariffRepository struct {
	db *sql.DB
}

func NewPgTariffRepository(db *sql.DB) repository.TariffRepository {
	return &pgTariffRepository{db: db}
}

// saveAttempts bounds retries when a concurrent writer takes the same version.
const saveAttempts = 3

func (r *pgTariffRepository) Save(ctx context.Context, facilityID string, tariff domain.Tariff) (int, error) {
	schedule, err := json.Marshal(tariff)
	if err != nil {
		return 0, fmt.Errorf("TariffRepository.Save marshal: %w", err)
	}
	query := `INSERT INTO tariffs (facility_id, version, schedule)
               SELECT $1::uuid, COALESCE(MAX(version), 0) + 1, $2::jsonb FROM tariffs WHERE facility_id = $1::uuid
               RETURNING version`

	for attempt := 1; ; attempt++ {
		var version int
		err := r.db.QueryRowContext(ctx, query, facilityID, schedule).Scan(&version)
		if err == nil {
			return version, nil
		}
		if _, ok := uniqueConstraint(err); ok {
			if attempt < saveAttempts {
				continue
			}
			return 0, fmt.Errorf("%w: tariff version taken %d times", repository.ErrDuplicateEntry, attempt)
		}
		return 0, fmt.Errorf("TariffRepository.Save: %w", err)
	}
}

func (r *pgTariffRepository) Latest(ctx context.Context, facilityID string) (domain.Tariff, int, error) {
	var (
		schedule []byte
		version  int
		tariff   domain.Tariff
	)
	query := `SELECT version, schedule FROM tariffs WHERE facility_id = $1 ORDER BY version DESC LIMIT 1`
	err := r.db.QueryRowContext(ctx, query, facilityID).Scan(&version, &schedule)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return tariff, 0, repository.ErrNotFound
		}
		return tariff, 0, fmt.Errorf("TariffRepository.Latest: %w", err)
	}
	if err := json.Unmarshal(schedule, &tariff); err != nil {
		return tariff, 0, fmt.Errorf("TariffRepository.Latest unmarshal: %w", err)
	}
	return tariff, version, nil
}
