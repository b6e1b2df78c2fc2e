// README: Location hierarchy store backed by PostgreSQL (idempotent get-or-create).
package location

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// GetOrCreateLocation materializes the country -> region -> city hierarchy
// and returns the city id. Each level is an idempotent upsert keyed by
// canonical name, so concurrent callers converge on the same rows.
func (s *Store) GetOrCreateLocation(ctx context.Context, country, region, city string) (int64, error) {
	var countryID int64
	err := s.db.QueryRow(ctx, `
        INSERT INTO countries (name) VALUES ($1)
        ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, country,
	).Scan(&countryID)
	if err != nil {
		return 0, err
	}

	var regionID int64
	err = s.db.QueryRow(ctx, `
        INSERT INTO regions (country_id, name) VALUES ($1, $2)
        ON CONFLICT (country_id, name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, countryID, region,
	).Scan(&regionID)
	if err != nil {
		return 0, err
	}

	var cityID int64
	err = s.db.QueryRow(ctx, `
        INSERT INTO cities (region_id, name) VALUES ($1, $2)
        ON CONFLICT (region_id, name) DO UPDATE SET name = EXCLUDED.name
        RETURNING id`, regionID, city,
	).Scan(&cityID)
	if err != nil {
		return 0, err
	}
	return cityID, nil
}
