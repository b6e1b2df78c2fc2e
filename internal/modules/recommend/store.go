// README: Place cache store backed by PostgreSQL; writes are idempotent by external place id.
package recommend

import (
	"context"
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	db *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// ExistingPlaceNames returns place names for a city in recommendation order.
func (s *Store) ExistingPlaceNames(ctx context.Context, cityID int64) ([]string, error) {
	rows, err := s.db.Query(ctx, `
        SELECT name FROM cached_places
        WHERE city_id = $1
        ORDER BY id`, cityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// CachedPlaces returns the full cache snapshot for a city in insertion order.
func (s *Store) CachedPlaces(ctx context.Context, cityID int64) ([]CachedPlace, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, city_id, place_id, name, category, address,
               lat, lng, rating, user_ratings_total, price_level, raw_data, created_at
        FROM cached_places
        WHERE city_id = $1
        ORDER BY id`, cityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var places []CachedPlace
	for rows.Next() {
		var p CachedPlace
		var address sql.NullString
		var lat, lng, rating sql.NullFloat64
		var ratingsTotal, priceLevel sql.NullInt64

		err := rows.Scan(
			&p.ID, &p.CityID, &p.PlaceID, &p.Name, &p.Category, &address,
			&lat, &lng, &rating, &ratingsTotal, &priceLevel, &p.Raw, &p.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if address.Valid {
			p.Address = address.String
		}
		if lat.Valid {
			p.Location.Lat = lat.Float64
		}
		if lng.Valid {
			p.Location.Lng = lng.Float64
		}
		if rating.Valid {
			p.Rating = rating.Float64
		}
		if ratingsTotal.Valid {
			p.UserRatingsTotal = int(ratingsTotal.Int64)
		}
		if priceLevel.Valid {
			p.PriceLevel = int(priceLevel.Int64)
		}
		places = append(places, p)
	}
	return places, rows.Err()
}

// SavePlaces persists newly discovered places. A place whose external id
// already exists anywhere in the store is skipped and counted as existing;
// concurrent writers racing on the same id converge via ON CONFLICT DO NOTHING.
func (s *Store) SavePlaces(ctx context.Context, cityID int64, places []CachedPlace) (newCount, existingCount int, err error) {
	if len(places) == 0 {
		return 0, 0, nil
	}

	ids := make([]string, 0, len(places))
	for _, p := range places {
		ids = append(ids, p.PlaceID)
	}
	known, err := s.knownPlaceIDs(ctx, ids)
	if err != nil {
		return 0, 0, err
	}

	for _, p := range places {
		if known[p.PlaceID] {
			existingCount++
			continue
		}
		tag, err := s.db.Exec(ctx, `
            INSERT INTO cached_places (
                city_id, place_id, name, category, address,
                lat, lng, rating, user_ratings_total, price_level, raw_data
            ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
            ON CONFLICT (place_id) DO NOTHING`,
			cityID,
			p.PlaceID,
			p.Name,
			string(p.Category),
			toStringPtr(p.Address),
			p.Location.Lat, p.Location.Lng,
			toFloatPtr(p.Rating),
			toIntPtr(p.UserRatingsTotal),
			toIntPtr(p.PriceLevel),
			p.Raw,
		)
		if err != nil {
			return newCount, existingCount, err
		}
		if tag.RowsAffected() == 1 {
			newCount++
		} else {
			// Lost a race with a concurrent writer.
			existingCount++
		}
	}
	return newCount, existingCount, nil
}

func (s *Store) knownPlaceIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	rows, err := s.db.Query(ctx, `
        SELECT place_id FROM cached_places WHERE place_id = ANY($1)`, ids,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	known := make(map[string]bool, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		known[id] = true
	}
	return known, rows.Err()
}

func toStringPtr(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func toFloatPtr(v float64) *float64 {
	if v == 0 {
		return nil
	}
	return &v
}

func toIntPtr(v int) *int {
	if v == 0 {
		return nil
	}
	return &v
}
