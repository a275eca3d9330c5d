package sqlstore

import (
	"context"
	"database/sql"
	"time"

	"catalog-cms/internal/model"
)

const locationSelect = `SELECT
	l.location_id, l.year_id, l.name, l.slug, l.summary, l.cover_asset_id, l.order_index,
	l.created_at, l.created_by, l.updated_at, l.updated_by,
	(SELECT COUNT(*) FROM collections c WHERE c.location_id = l.location_id) AS collection_count
FROM locations l`

type locationStore struct {
	db *sql.DB
}

func (s *locationStore) Create(ctx context.Context, loc *model.Location) error {
	if loc.LocationID == "" {
		loc.LocationID = model.NewID()
	}
	now := formatTime(loc.CreatedAt)
	loc.CreatedAt, _ = parseTime(now)
	loc.UpdatedAt = loc.CreatedAt

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO locations (
		   location_id, year_id, name, slug, summary, cover_asset_id, order_index,
		   created_at, created_by, updated_at, updated_by
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loc.LocationID, loc.YearID, loc.Name, loc.Slug,
		nullString(loc.Summary), nullString(loc.CoverAssetID), loc.OrderIndex,
		now, nullString(loc.CreatedBy), now, nullString(loc.UpdatedBy),
	)
	return translate(err)
}

func (s *locationStore) GetByID(ctx context.Context, yearID, id string) (*model.Location, error) {
	return scanLocation(s.db.QueryRowContext(ctx,
		locationSelect+` WHERE l.location_id = ? AND l.year_id = ?`, id, yearID))
}

func (s *locationStore) FindByID(ctx context.Context, id string) (*model.Location, error) {
	return scanLocation(s.db.QueryRowContext(ctx, locationSelect+` WHERE l.location_id = ?`, id))
}

func (s *locationStore) FindBySlug(ctx context.Context, yearID, slug string) (*model.Location, error) {
	return scanLocation(s.db.QueryRowContext(ctx,
		locationSelect+` WHERE l.year_id = ? AND l.slug = ?`, yearID, slug))
}

func (s *locationStore) ListByYear(ctx context.Context, yearID string) ([]model.Location, error) {
	rows, err := s.db.QueryContext(ctx, locationSelect+` WHERE l.year_id = ?`, yearID)
	if err != nil {
		return nil, translate(err)
	}
	defer rows.Close()

	var out []model.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *loc)
	}
	return out, rows.Err()
}

func (s *locationStore) ListOrderIndexes(ctx context.Context, yearID string) ([]string, error) {
	return queryStrings(ctx, s.db, `SELECT order_index FROM locations WHERE year_id = ?`, yearID)
}

func (s *locationStore) Update(ctx context.Context, loc *model.Location) error {
	loc.UpdatedAt = time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`UPDATE locations
		    SET name = ?, slug = ?, summary = ?, cover_asset_id = ?, order_index = ?,
		        updated_at = ?, updated_by = ?
		  WHERE location_id = ? AND year_id = ?`,
		loc.Name, loc.Slug, nullString(loc.Summary), nullString(loc.CoverAssetID), loc.OrderIndex,
		formatTime(loc.UpdatedAt), nullString(loc.UpdatedBy),
		loc.LocationID, loc.YearID,
	)
	if err != nil {
		return translate(err)
	}
	return requireOne(res)
}

func (s *locationStore) Delete(ctx context.Context, yearID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM locations WHERE location_id = ? AND year_id = ?`, id, yearID)
	if err != nil {
		return translate(err)
	}
	return requireOne(res)
}

func (s *locationStore) Reorder(ctx context.Context, yearID string, indexes map[string]string, actorID string) error {
	now := formatTime(time.Now())
	return inTx(ctx, s.db, func(tx *sql.Tx) error {
		for id, idx := range indexes {
			res, err := tx.ExecContext(ctx,
				`UPDATE locations SET order_index = ?, updated_at = ?, updated_by = ?
				  WHERE location_id = ? AND year_id = ?`,
				idx, now, actorID, id, yearID,
			)
			if err != nil {
				return translate(err)
			}
			if err := requireOne(res); err != nil {
				return err
			}
		}
		return nil
	})
}

func scanLocation(row rowScanner) (*model.Location, error) {
	var (
		loc                  model.Location
		summary, cover       sql.NullString
		createdBy, updatedBy sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(
		&loc.LocationID, &loc.YearID, &loc.Name, &loc.Slug, &summary, &cover, &loc.OrderIndex,
		&createdAt, &createdBy, &updatedAt, &updatedBy, &loc.CollectionCount,
	)
	if err != nil {
		return nil, translate(err)
	}
	if loc.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if loc.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	loc.Summary = stringPtr(summary)
	loc.CoverAssetID = stringPtr(cover)
	loc.CreatedBy = stringPtr(createdBy)
	loc.UpdatedBy = stringPtr(updatedBy)
	return &loc, nil
}
