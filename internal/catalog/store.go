// Package catalog is the durable restaurant store, keyed by business id.
// Records are written by the catalog-loader tool and read by the fulfillment
// worker and the index rebuild.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"dining-concierge/internal/common/logger"
	"dining-concierge/internal/models"
)

const restaurantColumns = `business_id, name, address, zip_code, latitude, longitude, review_count, rating, cuisine, inserted_at`

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// GetByID fetches one record by business id. A missing record returns
// (nil, nil); only infrastructure failures are errors.
func (s *Store) GetByID(ctx context.Context, businessID string) (*models.RestaurantRecord, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants WHERE business_id = $1`

	var rec models.RestaurantRecord
	err := s.db.QueryRowContext(ctx, query, businessID).Scan(
		&rec.BusinessID,
		&rec.Name,
		&rec.Address,
		&rec.ZipCode,
		&rec.Latitude,
		&rec.Longitude,
		&rec.ReviewCount,
		&rec.Rating,
		&rec.Cuisine,
		&rec.InsertedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get restaurant %s: %w", businessID, err)
	}

	return &rec, nil
}

// ScanAll returns every catalog record. Used by the index rebuild, which
// projects the full catalog into the search index.
func (s *Store) ScanAll(ctx context.Context) ([]models.RestaurantRecord, error) {
	query := `SELECT ` + restaurantColumns + ` FROM restaurants ORDER BY business_id`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("scan restaurants: %w", err)
	}
	defer rows.Close()

	var records []models.RestaurantRecord
	for rows.Next() {
		var rec models.RestaurantRecord
		if err := rows.Scan(
			&rec.BusinessID,
			&rec.Name,
			&rec.Address,
			&rec.ZipCode,
			&rec.Latitude,
			&rec.Longitude,
			&rec.ReviewCount,
			&rec.Rating,
			&rec.Cuisine,
			&rec.InsertedAt,
		); err != nil {
			return nil, fmt.Errorf("scan restaurants: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("scan restaurants: %w", err)
	}

	return records, nil
}

// Put upserts one record by business id.
func (s *Store) Put(ctx context.Context, rec models.RestaurantRecord) error {
	if rec.BusinessID == "" {
		return fmt.Errorf("put restaurant: missing business id")
	}

	query := `
		INSERT INTO restaurants (` + restaurantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (business_id) DO UPDATE SET
			name = EXCLUDED.name,
			address = EXCLUDED.address,
			zip_code = EXCLUDED.zip_code,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			review_count = EXCLUDED.review_count,
			rating = EXCLUDED.rating,
			cuisine = EXCLUDED.cuisine`

	_, err := s.db.ExecContext(ctx, query,
		rec.BusinessID,
		rec.Name,
		rec.Address,
		rec.ZipCode,
		rec.Latitude,
		rec.Longitude,
		rec.ReviewCount,
		rec.Rating,
		rec.Cuisine,
		rec.InsertedAt,
	)
	if err != nil {
		return fmt.Errorf("put restaurant %s: %w", rec.BusinessID, err)
	}
	return nil
}
