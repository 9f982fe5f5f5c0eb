package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/samirrijal/territorymap/internal/core/domain"
)

// CatalogRepo implements ports.CatalogRepository and ports.CatalogWriter with pgx.
type CatalogRepo struct {
	db *DB
}

// NewCatalogRepo creates a new CatalogRepo.
func NewCatalogRepo(db *DB) *CatalogRepo {
	return &CatalogRepo{db: db}
}

// LoadCatalog reads every catalog record.
func (r *CatalogRepo) LoadCatalog(ctx context.Context) (domain.Catalog, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT feature_id, title, subtitle, description, capacity, price, distance,
		       tags, photo, details_url, booking_url, phone
		FROM catalog_records
	`)
	if err != nil {
		return nil, fmt.Errorf("query catalog: %w", err)
	}
	defer rows.Close()

	catalog := domain.Catalog{}
	for rows.Next() {
		var (
			id                        string
			rec                       domain.CatalogRecord
			capacity, price, distance string
		)
		if err := rows.Scan(&id, &rec.Title, &rec.Subtitle, &rec.Description,
			&capacity, &price, &distance, &rec.Tags, &rec.Photo,
			&rec.Links.DetailsURL, &rec.Links.BookingURL, &rec.Links.Phone); err != nil {
			return nil, fmt.Errorf("scan catalog record: %w", err)
		}
		rec.Capacity = domain.FlexString(capacity)
		rec.Price = domain.FlexString(price)
		rec.Distance = domain.FlexString(distance)
		catalog[id] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate catalog: %w", err)
	}
	return catalog, nil
}

// UpsertBatch inserts or updates every record using pgx.Batch.
func (r *CatalogRepo) UpsertBatch(ctx context.Context, catalog domain.Catalog) (int, error) {
	if len(catalog) == 0 {
		return 0, nil
	}
	batch := &pgx.Batch{}
	for id, rec := range catalog {
		tags := rec.Tags
		if tags == nil {
			tags = []string{}
		}
		batch.Queue(`
			INSERT INTO catalog_records (feature_id, title, subtitle, description, capacity, price,
			                             distance, tags, photo, details_url, booking_url, phone)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (feature_id) DO UPDATE
			SET title = EXCLUDED.title, subtitle = EXCLUDED.subtitle,
			    description = EXCLUDED.description, capacity = EXCLUDED.capacity,
			    price = EXCLUDED.price, distance = EXCLUDED.distance, tags = EXCLUDED.tags,
			    photo = EXCLUDED.photo, details_url = EXCLUDED.details_url,
			    booking_url = EXCLUDED.booking_url, phone = EXCLUDED.phone,
			    updated_at = now()
		`, id, rec.Title, rec.Subtitle, rec.Description, string(rec.Capacity), string(rec.Price),
			string(rec.Distance), tags, rec.Photo, rec.Links.DetailsURL, rec.Links.BookingURL, rec.Links.Phone)
	}
	br := r.db.Pool.SendBatch(ctx, batch)
	defer br.Close()
	for range catalog {
		if _, err := br.Exec(); err != nil {
			return 0, fmt.Errorf("batch exec: %w", err)
		}
	}
	return len(catalog), nil
}
